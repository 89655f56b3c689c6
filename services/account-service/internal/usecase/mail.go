package usecase

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/vasapolrittideah/account-api/shared/mailer"
)

func sendCode(ctx context.Context, sender mailer.Sender, to, subject, htmlBody string) error {
	if _, err := sender.Send(ctx, mailer.Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

func signupCodeEmail(code string, ttl time.Duration) string {
	return fmt.Sprintf(`
		<h2>Verify Your Email</h2>
		<p>Your verification code is:</p>
		<h1 style="letter-spacing: 5px;">%s</h1>
		<p>This code will expire in %s.</p>
		<p>If you didn't request this, please ignore this email.</p>
	`, code, ttl)
}

func resetCodeEmail(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`
		<p>Hello, %s</p>
		<p>We received a request to reset your password. Use the verification code below to proceed.</p>
		<h1 style="letter-spacing: 8px;">%s</h1>
		<p>This code is valid for %s. If you did not request a password reset, you can safely ignore this email and your account will remain secure.</p>
	`, html.EscapeString(name), code, ttl)
}
