package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"stockroom/internal/config"
)

// SMTPNotifier delivers credit notifications as HTML mail over SMTP.
type SMTPNotifier struct {
	cfg  config.SMTPConfig
	tmpl *template.Template
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg config.SMTPConfig) (*SMTPNotifier, error) {
	tmpl, err := template.New("credit_issued").Parse(creditIssuedTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credit email template: %w", err)
	}
	return &SMTPNotifier{cfg: cfg, tmpl: tmpl}, nil
}

// SendCreditIssued renders and sends the store credit email.
func (s *SMTPNotifier) SendCreditIssued(_ context.Context, n CreditNotification) error {
	htmlContent, err := s.renderCreditIssued(n)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your store credit: %s", n.Amount.String())
	message := s.buildHTMLEmail(n.Email, subject, htmlContent)

	return s.sendEmail(n.Email, message)
}

// sendEmail sends an email using SMTP.
func (s *SMTPNotifier) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message.
func (s *SMTPNotifier) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.cfg.FromName,
		s.cfg.From,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

// renderCreditIssued renders the store credit email template.
func (s *SMTPNotifier) renderCreditIssued(n CreditNotification) (string, error) {
	data := struct {
		Code      string
		Amount    string
		ExpiresAt string
		AppName   string
	}{
		Code:    n.Code,
		Amount:  n.Amount.String(),
		AppName: s.cfg.FromName,
	}
	if n.ExpiresAt != nil {
		data.ExpiresAt = n.ExpiresAt.Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// creditIssuedTemplate is the HTML template for store credit emails.
const creditIssuedTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your Store Credit</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 40px 0;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
                    <tr>
                        <td style="background-color: #2b6cb0; padding: 40px 30px; text-align: center;">
                            <h1 style="color: #ffffff; margin: 0; font-size: 28px; font-weight: 600;">{{.AppName}}</h1>
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 40px 30px;">
                            <h2 style="color: #1a1a2e; margin: 0 0 20px 0; font-size: 24px; font-weight: 600;">You have store credit</h2>
                            <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin: 0 0 20px 0;">
                                We processed your return and issued <strong>{{.Amount}}</strong> in store credit.
                                Use the code below on your next order.
                            </p>
                            <table role="presentation" style="margin: 0 auto 30px auto;">
                                <tr>
                                    <td style="background-color: #edf2f7; border: 1px dashed #a0aec0; border-radius: 8px; padding: 16px 32px; text-align: center;">
                                        <span style="color: #2b6cb0; font-size: 20px; font-weight: 700; letter-spacing: 1px;">{{.Code}}</span>
                                    </td>
                                </tr>
                            </table>
                            {{if .ExpiresAt}}
                            <p style="color: #718096; font-size: 14px; line-height: 1.6; margin: 0;">
                                This credit expires on <strong>{{.ExpiresAt}}</strong>.
                            </p>
                            {{end}}
                        </td>
                    </tr>
                    <tr>
                        <td style="background-color: #f8fafc; padding: 30px; text-align: center; border-top: 1px solid #e2e8f0;">
                            <p style="color: #a0aec0; font-size: 14px; margin: 0;">
                                This email was sent by {{.AppName}}
                            </p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
