package email

import (
	"github.com/Znbmels/visa/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender определяет интерфейс для отправки email
type Sender interface {
	Send(to, subject, body string) error
}

type EmailSender struct {
	cfg *config.Config
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (e *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.Email.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		e.cfg.Email.SMTPHost,
		e.cfg.Email.SMTPPort,
		e.cfg.Email.SMTPUsername,
		e.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// NoopSender используется в тестах и когда SMTP не сконфигурирован.
type NoopSender struct{}

func (NoopSender) Send(to, subject, body string) error { return nil }
