package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/internal/domain"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	d := data.(*domain.WelcomeEmailData)
	return "Welcome " + d.Name, "<p>" + name + "</p>", name, nil
}

func TestEmailService_SendWelcome(t *testing.T) {
	ctx := context.Background()
	data := &domain.WelcomeEmailData{Email: "a@example.com", Name: "Alice"}

	t.Run("success", func(t *testing.T) {
		m := &fakeMailer{}
		require.NoError(t, NewEmailService(m, fakeRenderer{}, testLogger).SendWelcome(ctx, data))
		assert.Equal(t, "a@example.com", m.to)
		assert.Equal(t, "Welcome Alice", m.subject)
		assert.Equal(t, "<p>welcome</p>", m.html)
	})

	t.Run("render error", func(t *testing.T) {
		err := NewEmailService(&fakeMailer{}, fakeRenderer{err: errors.New("bad template")}, testLogger).SendWelcome(ctx, data)
		assert.ErrorContains(t, err, "render")
	})

	t.Run("send error", func(t *testing.T) {
		err := NewEmailService(&fakeMailer{err: errors.New("throttled")}, fakeRenderer{}, testLogger).SendWelcome(ctx, data)
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("nil data", func(t *testing.T) {
		assert.Error(t, NewEmailService(&fakeMailer{}, fakeRenderer{}, testLogger).SendWelcome(ctx, nil))
	})
}
