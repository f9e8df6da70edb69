package email

import (
	"fmt"
	"net/smtp"
)

// Sender delivers plain text email through an SMTP relay.
type Sender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func NewSender(host, port, from, password string) *Sender {
	return &Sender{Host: host, Port: port, From: from, Password: password}
}

// Enabled reports whether enough settings are present to send mail.
func (s *Sender) Enabled() bool {
	return s != nil && s.Host != "" && s.From != ""
}

// Send sends a plain text email using SMTP.
func (s *Sender) Send(to, subject, body string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")

	address := s.Host + ":" + s.Port

	err := smtp.SendMail(address, auth, s.From, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
