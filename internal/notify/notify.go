package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"sportshop-be/internal/config"
	"sportshop-be/internal/logger"

	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("notification recipient is empty")

type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message to an email address.
type Notifier interface {
	Notify(ctx context.Context, to string, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPNotifier{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from: cfg.SMTPFrom,
		auth: auth,
		send: smtp.SendMail,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, to string, msg Message) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}

	if err := n.send(n.addr, n.auth, n.from, []string{to}, n.format(to, msg)); err != nil {
		logger.FromCtx(ctx).Error("smtp send failed",
			zap.String("layer", "notify"),
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (n *SMTPNotifier) format(to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + n.from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, to string, msg Message) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	logger.FromCtx(ctx).Info("notification",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// New returns an SMTP notifier when SMTP_HOST is set, otherwise a log sink.
func New(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		logger.L().Warn("SMTP_HOST not set, notifications are logged only")
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}
