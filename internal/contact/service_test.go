package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

type fakeMailer struct {
	to, replyTo, subject, body string
	err                        error
	calls                      int
}

func (m *fakeMailer) SendEmail(_ context.Context, to, replyTo, subject, body string) error {
	m.calls++
	m.to, m.replyTo, m.subject, m.body = to, replyTo, subject, body
	return m.err
}

func TestDispatch_SendsToFarmInbox(t *testing.T) {
	mailer := &fakeMailer{}
	service := NewService(mailer, "howdy@hollowbrookfarm.com", zap.NewNop())

	err := service.Dispatch(context.Background(), &Inquiry{
		Name:    "Jordan Miller",
		Email:   "jordan@example.com",
		Phone:   "931-555-0184",
		Message: "Do you have goat shares available this fall?",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "howdy@hollowbrookfarm.com", mailer.to)
	assert.Equal(t, "jordan@example.com", mailer.replyTo)
	assert.Contains(t, mailer.body, "Jordan Miller")
	assert.Contains(t, mailer.body, "931-555-0184")
	assert.Contains(t, mailer.body, "goat shares")
}

func TestDispatch_ValidatesRequiredFields(t *testing.T) {
	mailer := &fakeMailer{}
	service := NewService(mailer, "howdy@hollowbrookfarm.com", zap.NewNop())

	cases := []Inquiry{
		{Email: "a@b.com", Message: "hi"},
		{Name: "A", Message: "hi"},
		{Name: "A", Email: "not-an-address", Message: "hi"},
		{Name: "A", Email: "a@b.com", Message: "   "},
	}
	for _, inquiry := range cases {
		err := service.Dispatch(context.Background(), &inquiry)
		assert.True(t, pastures.IsValidation(err), "inquiry %+v should fail validation", inquiry)
	}
	assert.Zero(t, mailer.calls)
}

func TestDispatch_SurfacesDeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("ses unavailable")}
	service := NewService(mailer, "howdy@hollowbrookfarm.com", zap.NewNop())

	err := service.Dispatch(context.Background(), &Inquiry{
		Name: "A", Email: "a@b.com", Message: "hi",
	})
	require.Error(t, err)
	assert.False(t, pastures.IsValidation(err))
	// One attempt only; the form never retries.
	assert.Equal(t, 1, mailer.calls)
}
