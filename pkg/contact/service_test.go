package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notification"
)

func TestValidate(t *testing.T) {
	valid := Message{
		Name:    "Visitor",
		Email:   "visitor@example.com",
		Message: "Hello there",
	}

	tests := []struct {
		name      string
		mutate    func(m *Message)
		wantField string
	}{
		{name: "valid message", mutate: func(m *Message) {}},
		{name: "missing name", mutate: func(m *Message) { m.Name = "  " }, wantField: "name"},
		{name: "missing email", mutate: func(m *Message) { m.Email = "" }, wantField: "email"},
		{name: "malformed email", mutate: func(m *Message) { m.Email = "not-an-email" }, wantField: "email"},
		{name: "missing message", mutate: func(m *Message) { m.Message = "" }, wantField: "message"},
		{name: "message too long", mutate: func(m *Message) { m.Message = strings.Repeat("a", MaxMessageLength+1) }, wantField: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid
			tt.mutate(&msg)
			err := Validate(msg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr ErrValidation
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to the owner with tagged subject", func(t *testing.T) {
		mock := &notification.MockNotifier{}
		svc := NewContactService(managerWith(t, mock), "owner@bbotir.xyz")

		err := svc.Submit(ctx, Message{
			Name:    "Visitor",
			Email:   "visitor@example.com",
			Message: "I'd like to work with you",
		})
		require.NoError(t, err)

		require.Len(t, mock.SentNotifications, 1)
		sent := mock.SentNotifications[0]
		assert.Equal(t, "owner@bbotir.xyz", sent.To)
		assert.Equal(t, "[bbotir.xyz] Contact from Visitor", sent.Subject)
		assert.Equal(t, "visitor@example.com", sent.Data["email"])
	})

	t.Run("invalid submission never reaches the notifier", func(t *testing.T) {
		mock := &notification.MockNotifier{}
		svc := NewContactService(managerWith(t, mock), "owner@bbotir.xyz")

		err := svc.Submit(ctx, Message{Name: "Visitor"})
		var validationErr ErrValidation
		require.ErrorAs(t, err, &validationErr)
		assert.Empty(t, mock.SentNotifications)
	})

	t.Run("smtp failure maps to delivery error", func(t *testing.T) {
		mock := &notification.MockNotifier{Err: errors.New("dial tcp: connection refused")}
		svc := NewContactService(managerWith(t, mock), "owner@bbotir.xyz")

		err := svc.Submit(ctx, Message{
			Name:    "Visitor",
			Email:   "visitor@example.com",
			Message: "Hello",
		})
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})
}

// managerWith wires a notifier into a manager with the contact notice
// registered, mirroring production wiring.
func managerWith(t *testing.T, notifier notification.Notifier) *notification.NotificationManager {
	t.Helper()
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, notifier)
	err := manager.RegisterNotification(notification.ContactMessageNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "New contact message",
		Text:    "From {{.name}} <{{.email}}>: {{.message}}",
	})
	require.NoError(t, err)
	return manager
}
