// Package notify sends account notifications by email.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

var ErrSendFailed = errors.New("email not sent")

// Credentials is the login handed to a partner when access is provisioned.
type Credentials struct {
	Name     string
	Email    string
	Role     types.Role
	Username string
	Password string
}

type Mailer interface {
	SendCredentials(ctx context.Context, creds Credentials) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	dialer sender
	logger *logrus.Logger
}

func NewSMTPMailer(config *types.Config, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   config.SMTPSender,
		dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPass),
		logger: logger,
	}
}

// New returns an SMTP mailer when SMTP_HOST is set and a no-op one otherwise.
func New(config *types.Config, logger *logrus.Logger) Mailer {
	if config.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, credential emails are disabled")
		return NopMailer{logger: logger}
	}
	return NewSMTPMailer(config, logger)
}

func (m *SMTPMailer) SendCredentials(ctx context.Context, creds Credentials) error {
	msg := credentialsMessage(m.from, creds)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.WithError(err).WithField("to", creds.Email).Error("failed to send credentials email")
			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrSendFailed, ctx.Err())
	}

	m.logger.WithField("to", creds.Email).Info("credentials email sent")
	return nil
}

func credentialsMessage(from string, creds Credentials) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", creds.Email)
	msg.SetHeader("Subject", "Your Reparv login credentials")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour %s account is ready.\n\nUsername: %s\nPassword: %s\n\nPlease change your password after the first login.\n",
		creds.Name, creds.Role, creds.Username, creds.Password,
	))
	return msg
}

type NopMailer struct {
	logger *logrus.Logger
}

func (n NopMailer) SendCredentials(_ context.Context, creds Credentials) error {
	if n.logger != nil {
		n.logger.WithField("to", creds.Email).Info("credentials email skipped")
	}
	return nil
}
