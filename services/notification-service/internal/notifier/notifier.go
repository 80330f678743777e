package notifier

import (
	"fmt"
	"log"
	"net/smtp"
)

// Notifier delivers a message to a user out of band. Handlers may be
// retried by the broker, so implementations must tolerate duplicates.
type Notifier interface {
	Notify(toEmail, subject, body string) error
}

// ConsoleNotifier logs instead of sending. Used whenever SMTP credentials
// are not configured.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(toEmail, subject, body string) error {
	log.Printf("[notify] %s -> %s :: %s", subject, toEmail, body)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (s *SMTPNotifier) Notify(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.User, toEmail, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.User, []string{toEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", toEmail, err)
	}
	return nil
}
