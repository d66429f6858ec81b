package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/unclebandit/mailpilot-backend/internal/model"
)

// Prober sends a test message for a sender credential and reports whether
// delivery worked. It must not mutate the credential list.
type Prober interface {
	Probe(c *model.SenderCredential) error
}

// SMTPProber probes credentials over SMTP. Google senders authenticate
// against smtp.gmail.com with their app password; SES senders against the
// account's SES SMTP endpoint with the registered address/secret pair.
type SMTPProber struct {
	SESHost   string
	SESPort   int
	GmailHost string
	GmailPort int
}

func FromEnv() *SMTPProber {
	p := &SMTPProber{
		SESHost:   os.Getenv("SES_SMTP_HOST"),
		SESPort:   587,
		GmailHost: "smtp.gmail.com",
		GmailPort: 587,
	}
	if p.SESHost == "" {
		p.SESHost = "email-smtp.us-east-1.amazonaws.com"
	}
	if v := os.Getenv("SES_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			p.SESPort = port
		}
	}
	return p
}

// Probe sends the credential a message addressed to itself.
func (p *SMTPProber) Probe(c *model.SenderCredential) error {
	host, port := p.GmailHost, p.GmailPort
	if c.Provider == model.ProviderSES {
		host, port = p.SESHost, p.SESPort
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.Address)
	m.SetHeader("To", c.Address)
	m.SetHeader("Subject", "Sender test")
	m.SetBody("text/plain", "This is a test message confirming this sender can deliver mail.")

	d := gomail.NewDialer(host, port, c.Address, c.Secret)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("probe send failed: %w", err)
	}
	return nil
}

var _ Prober = (*SMTPProber)(nil)
