// Package email abstracts outgoing e-mail.
//
// Services depend on the Sender interface only; the Resend implementation
// is chosen in main. The one message sent today is the welcome mail after
// registration, which is best effort: a send failure never fails the
// registration.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"
)

// Sender sends transactional e-mail.
type Sender interface {
	// SendWelcome greets a freshly registered user.
	SendWelcome(ctx context.Context, toEmail, name string) error
}

// resendSender sends through the Resend API.
type resendSender struct {
	client    *resend.Client
	fromEmail string // must belong to a domain verified in Resend
}

// NewResendSender returns a Sender backed by Resend.
func NewResendSender(apiKey, fromEmail string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (s *resendSender) SendWelcome(ctx context.Context, toEmail, name string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("rtctoken <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Welcome",
		Html:    welcomeHTML(name),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func welcomeHTML(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:24px;font-family:Arial,Helvetica,sans-serif;">
  <h2 style="margin:0 0 16px 0;">Welcome, %s</h2>
  <p style="font-size:15px;line-height:1.6;margin:0;">
    Your account is ready. Sign in from the app to join calls and chats.
  </p>
</body>
</html>`, html.EscapeString(name))
}
