package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/mindfulpages/order-intake/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers one message. Implementations must be safe for concurrent
// use; the order service sends the customer and operator mails together.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends over a plain-auth SMTP transport.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.cfg.From, msg.To, msg.Subject, msg.HTML,
	)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{msg.To}, []byte(body))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send error: %v", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SimulatedMailer stands in for the transport outside production: it waits a
// fixed delay and logs instead of dispatching.
type SimulatedMailer struct {
	Delay time.Duration
}

func NewSimulatedMailer() *SimulatedMailer {
	return &SimulatedMailer{Delay: time.Millisecond * 200}
}

func (m *SimulatedMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-time.After(m.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	log.Printf("Simulated email: To=%s, Subject=%s", msg.To, msg.Subject)
	return nil
}
