package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	authCodeMin = 100000
	authCodeMax = 999999
)

// GenerateAuthCode generates a uniformly random 6-digit numeric code
// in the range 100000-999999.
func GenerateAuthCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(authCodeMax-authCodeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+authCodeMin), nil
}

// HashAuthCode returns a salted bcrypt hash of code.
func HashAuthCode(code string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareAuthCode reports whether code matches hash. A malformed hash is
// returned as an error; a plain mismatch is not.
func CompareAuthCode(hash, code string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
