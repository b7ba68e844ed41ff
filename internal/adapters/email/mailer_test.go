package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "no-reply@example.com", fromName: "Event Calendar", logger: testLogger}

	require.NoError(t, m.Send(context.Background(), "a@example.com", "Hi", "<p>Hi</p>", ""))
	assert.Equal(t, "Event Calendar <no-reply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"a@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>Hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	assert.ErrorContains(t, m.Send(context.Background(), "a@example.com", "Hi", "", "Hi"), "throttled")
}

func TestNewMailer_Providers(t *testing.T) {
	_, ok := NewMailer(MailerConfig{Provider: "ses", SES: SESConfig{Region: "us-east-1"}}, testLogger).(*sesMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "noop"}, testLogger).(*noopMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger).(*noopMailer)
	assert.True(t, ok)
}

func TestTemplateRenderer_Welcome(t *testing.T) {
	subject, html, text, err := NewTemplateRenderer().Render("welcome", &domain.WelcomeEmailData{
		Email:       "a@example.com",
		Name:        "<Alice>",
		CalendarURL: "https://calendar.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Event Calendar, <Alice>", subject)
	assert.Contains(t, html, "&lt;Alice&gt;")
	assert.Contains(t, html, `href="https://calendar.example"`)
	assert.Contains(t, text, "https://calendar.example")

	_, _, _, err = NewTemplateRenderer().Render("missing", nil)
	assert.Error(t, err)
}

func TestTemplateRenderer_PasswordReset(t *testing.T) {
	subject, html, text, err := NewTemplateRenderer().Render("password_reset", &domain.PasswordResetEmailData{
		Email:    "a@example.com",
		Name:     "Alice",
		ResetURL: "https://calendar.example/reset-password?token=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reset your Event Calendar password", subject)
	assert.Contains(t, html, `href="https://calendar.example/reset-password?token=abc"`)
	assert.Contains(t, text, "https://calendar.example/reset-password?token=abc")
	assert.Contains(t, text, "Hi Alice,")
}
