package tasks

import (
	"fmt"

	"gopkg.in/mail.v2"
)

// Mailer delivers a rendered e-mail
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends e-mails through an SMTP server
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send sends an HTML e-mail
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
