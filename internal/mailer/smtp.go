// Package mailer delivers confirmation codes by email. Messages go through
// an Outbox so that SMTP latency and failures never reach the API caller.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Message is a single outgoing email.
type Message struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// SMTPSender sends mail through an SMTP relay, upgrading with STARTTLS when
// UseTLS is set.
type SMTPSender struct {
	config SMTPConfig
	dialer net.Dialer
}

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	if config.Port == 0 {
		config.Port = 587
	}
	return &SMTPSender{config: config}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.config.From == "" {
		return errors.New("sender address is empty")
	}
	if msg.To == "" {
		return errors.New("recipient is empty")
	}
	if msg.Subject == "" {
		return errors.New("subject is empty")
	}
	if msg.ContentType == "" {
		msg.ContentType = "text/plain; charset=UTF-8"
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if s.config.UseTLS {
		if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = client.Mail(envelopeAddress(s.config.From)); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data: %w", err)
	}
	if _, err = w.Write(compose(s.config.From, msg)); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return client.Quit()
}

func compose(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + msg.ContentType + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// envelopeAddress strips a display name: "Name <a@b>" becomes "a@b".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}
