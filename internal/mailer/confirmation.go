package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

const confirmationSubject = "Your ReviewHub confirmation code"

const confirmationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .code { font-size: 28px; font-weight: bold; letter-spacing: 4px; padding: 12px 0; }
        .footer { margin-top: 24px; font-size: 12px; color: #999; }
    </style>
</head>
<body>
<div class="container">
    <p>Hello {{.Username}},</p>
    <p>Use this code together with your email address to obtain an API token:</p>
    <div class="code">{{.Code}}</div>
    <p>Requesting a new code replaces this one.</p>
    <div class="footer">If you did not sign up for ReviewHub you can ignore this email.</div>
</div>
</body>
</html>`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(confirmationTemplate))

// Outbox accepts messages for asynchronous delivery.
type Outbox interface {
	Enqueue(ctx context.Context, msg Message) error
}

// ConfirmationMailer renders confirmation emails and hands them to an Outbox.
type ConfirmationMailer struct {
	outbox Outbox
}

func NewConfirmationMailer(outbox Outbox) *ConfirmationMailer {
	return &ConfirmationMailer{outbox: outbox}
}

// SendConfirmationCode queues the confirmation email for to.
func (m *ConfirmationMailer) SendConfirmationCode(ctx context.Context, to, username, code string) error {
	body, err := renderConfirmation(username, code)
	if err != nil {
		return err
	}
	return m.outbox.Enqueue(ctx, Message{
		To:          to,
		Subject:     confirmationSubject,
		Body:        body,
		ContentType: "text/html; charset=UTF-8",
	})
}

func renderConfirmation(username, code string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Username string
		Code     string
	}{username, code}
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return buf.String(), nil
}
