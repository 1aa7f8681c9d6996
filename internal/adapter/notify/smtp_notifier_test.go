package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/banko/internal/core/domain"
)

func testConfig() SMTPConfig {
	return SMTPConfig{
		Host:     "smtp.example.com",
		User:     "banko",
		Password: "pw",
		From:     "banko@example.com",
		To:       "host@example.com",
	}
}

func TestVerifyAndNotify_SendsMail(t *testing.T) {
	n := NewSMTPNotifier(testConfig())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := n.VerifyAndNotify(context.Background(), "Mette\r\nBcc: evil@example.com", domain.ClaimFullBoard)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "banko@example.com", gotFrom)
	assert.Equal(t, []string{"host@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Banko: Mette  Bcc: evil@example.com claims full-board\r\n")
}

func TestVerifyAndNotify_SendFailureSurfaces(t *testing.T) {
	n := NewSMTPNotifier(testConfig())
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("550 mailbox unavailable")
	}

	err := n.VerifyAndNotify(context.Background(), "Mette", domain.ClaimOneLine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "550 mailbox unavailable")
}

func TestVerifyAndNotify_NotConfigured(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com"})
	err := n.VerifyAndNotify(context.Background(), "Mette", domain.ClaimOneLine)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
