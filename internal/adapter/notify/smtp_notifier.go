package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rl1809/banko/internal/core/domain"
)

var ErrNotConfigured = errors.New("email is not configured")

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// To receives the verification requests
	To string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier asks the game host to verify a claim by email.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (n *SMTPNotifier) configured() bool {
	c := n.cfg
	return c.Host != "" && c.User != "" && c.Password != "" && c.From != "" && c.To != ""
}

func (n *SMTPNotifier) VerifyAndNotify(ctx context.Context, claimantName string, claimType domain.ClaimType) error {
	if !n.configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.message(claimantName, claimType)
	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	if err := n.send(addr, auth, n.cfg.From, []string{n.cfg.To}, msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(claimantName string, claimType domain.ClaimType) []byte {
	subject := fmt.Sprintf("Banko: %s claims %s", sanitizeHeader(claimantName), claimType)
	body := fmt.Sprintf("%s says they have %s.\n\nClaimed at %s. Please check their board before the next draw.",
		claimantName, claimType, n.now().Format(time.RFC1123))

	return []byte(strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + n.cfg.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n"))
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
