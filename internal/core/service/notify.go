package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Notifier delivers backup and restore outcome notifications.
type Notifier interface {
	Notify(to, subject, body string) error
}

// SMTPConfig holds mail relay settings from the config file.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpNotifier struct {
	cfg SMTPConfig
	log *logrus.Entry
}

// NewSMTPNotifier returns a Notifier sending plain-text mail through the
// configured relay.
func NewSMTPNotifier(cfg SMTPConfig) Notifier {
	return &smtpNotifier{
		cfg: cfg,
		log: logrus.WithField("component", "notify"),
	}
}

func (n *smtpNotifier) Notify(to, subject, body string) error {
	if to == "" {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.log.WithField("to", to).Debug("notification sent")
	return nil
}

type nopNotifier struct{}

// NewNopNotifier returns a Notifier that discards everything. Used when no
// SMTP relay is configured.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Notify(to, subject, body string) error {
	return nil
}
