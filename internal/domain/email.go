package domain

import "context"

// Mailer delivers a single rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the email sent after registration.
type WelcomeEmailData struct {
	Email       string
	Name        string
	CalendarURL string
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	Email    string
	Name     string
	ResetURL string
}

// EmailService sends domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
}
