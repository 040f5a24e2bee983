package notify

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "credits@example.com",
		FromName: "Stockroom",
	}
}

func TestSMTPNotifier_RenderCreditIssued(t *testing.T) {
	n, err := NewSMTPNotifier(testSMTPConfig())
	require.NoError(t, err)

	expires := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	html, err := n.renderCreditIssued(CreditNotification{
		Email:     "customer@example.com",
		Code:      "CREDIT-1700000000000-A1B2C3",
		Amount:    2050,
		ExpiresAt: &expires,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "CREDIT-1700000000000-A1B2C3")
	assert.Contains(t, html, "20.50")
	assert.Contains(t, html, "March 15, 2026")
	assert.Contains(t, html, "Stockroom")
}

func TestSMTPNotifier_RenderWithoutExpiry(t *testing.T) {
	n, err := NewSMTPNotifier(testSMTPConfig())
	require.NoError(t, err)

	html, err := n.renderCreditIssued(CreditNotification{
		Email:  "customer@example.com",
		Code:   "CREDIT-1700000000000-XYZXYZ",
		Amount: 500,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "CREDIT-1700000000000-XYZXYZ")
	assert.NotContains(t, html, "expires on")
}

func TestSMTPNotifier_BuildHTMLEmailHeaders(t *testing.T) {
	n, err := NewSMTPNotifier(testSMTPConfig())
	require.NoError(t, err)

	message := string(n.buildHTMLEmail("customer@example.com", "Your store credit: 20.50", "<p>body</p>"))

	assert.Contains(t, message, "From: Stockroom <credits@example.com>")
	assert.Contains(t, message, "To: customer@example.com")
	assert.Contains(t, message, "Subject: Your store credit: 20.50")
	assert.Contains(t, message, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, message, "<p>body</p>")
}

func TestNopNotifier_Succeeds(t *testing.T) {
	n := NewNopNotifier(zerolog.Nop())

	err := n.SendCreditIssued(context.Background(), CreditNotification{
		Email:  "customer@example.com",
		Code:   "CREDIT-1-ABC123",
		Amount: 1000,
	})
	assert.NoError(t, err)
}
