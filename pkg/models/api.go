package models

// Auth API types
type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RequestCodeResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type VerifyCodeResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Profile API types
type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
}

// Todo API types
type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

type UpdateTodoRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

type ToggleTodoRequest struct {
	Completed bool `json:"completed"`
}

type ListTodosResponse struct {
	Todos []TodoWithOwner `json:"todos"`
}

// Dev inbox API types
type MarkReadResponse struct {
	Success bool `json:"success"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
