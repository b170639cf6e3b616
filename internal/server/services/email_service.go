package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/resendlabs/resend-go"
)

// Message is an outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a single message.
type Mailer interface {
	Deliver(ctx context.Context, msg Message) error
}

type OTPEmailData struct {
	Code          string
	RecipientName string
	ExpiresIn     time.Duration
}

const otpSubject = "Your sign-in code"

var otpHTMLTemplate = htmltemplate.Must(htmltemplate.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #333;">{{if .RecipientName}}Hi {{.RecipientName}},{{else}}Hi,{{end}}</h2>
	<p>Use this code to sign in to your todo list:</p>
	<div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; margin: 20px 0;">
		{{.SpacedCode}}
	</div>
	<p style="color: #666;">This code will expire in {{.Minutes}} minutes.</p>
	<p style="color: #666;">If you didn't request this code, please ignore this email.</p>
</div>
`))

var otpTextTemplate = texttemplate.Must(texttemplate.New("otp").Parse(
	`{{if .RecipientName}}Hi {{.RecipientName}},{{else}}Hi,{{end}}

Your sign-in code is {{.Code}}

This code will expire in {{.Minutes}} minutes.
If you didn't request this code, please ignore this email.
`))

// RenderOTPEmail builds the HTML and plain-text bodies for a code email.
// The recipient is left for the caller to set.
func RenderOTPEmail(data OTPEmailData) (Message, error) {
	view := struct {
		Code          string
		SpacedCode    string
		RecipientName string
		Minutes       int
	}{
		Code:          data.Code,
		SpacedCode:    spaceDigits(data.Code),
		RecipientName: strings.TrimSpace(data.RecipientName),
		Minutes:       int(data.ExpiresIn.Round(time.Minute).Minutes()),
	}

	var html, text bytes.Buffer
	if err := otpHTMLTemplate.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("html body: %w", err)
	}
	if err := otpTextTemplate.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("text body: %w", err)
	}

	return Message{
		Subject: otpSubject,
		HTML:    strings.TrimSpace(html.String()),
		Text:    text.String(),
	}, nil
}

// spaceDigits renders "123456" as "1 2 3 4 5 6".
func spaceDigits(code string) string {
	return strings.Join(strings.Split(code, ""), " ")
}

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client    *resend.Client
	fromEmail string
}

func NewResendMailer(apiKey, fromEmail string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY not set")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("FROM_EMAIL not set")
	}
	return &ResendMailer{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}, nil
}

func (m *ResendMailer) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES.
type SESMailer struct {
	client    sesAPI
	fromEmail string
}

// NewSESMailer uses static credentials when both keys are set, otherwise
// the default AWS credential chain.
func NewSESMailer(ctx context.Context, region, accessKeyID, secretAccessKey, fromEmail string) (*SESMailer, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("FROM_EMAIL not set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
	}, nil
}

func (m *SESMailer) Deliver(ctx context.Context, msg Message) error {
	body := &sestypes.Body{}
	if msg.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}
	if msg.Text != "" {
		body.Text = &sestypes.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if body.Html == nil && body.Text == nil {
		return errors.New("ses: empty message body")
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.fromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses: %w", err)
	}
	return nil
}
