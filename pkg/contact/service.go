package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notification"
)

// MaxMessageLength bounds the contact message body.
const MaxMessageLength = 5000

// NoticeSender is the slice of NotificationManager the contact service needs.
type NoticeSender interface {
	Send(noticeType notification.NoticeType, system notification.NotificationSystem, data notification.NotificationData) error
}

// Message is a validated contact-form submission.
type Message struct {
	Name    string
	Email   string
	Message string
}

type ContactService struct {
	sender     NoticeSender
	ownerEmail string
}

func NewContactService(sender NoticeSender, ownerEmail string) *ContactService {
	return &ContactService{
		sender:     sender,
		ownerEmail: ownerEmail,
	}
}

// Validate checks a submission and returns a user-facing error message when
// it is rejected.
func Validate(msg Message) error {
	if strings.TrimSpace(msg.Name) == "" {
		return ErrValidation{Field: "name", Reason: "Name is required"}
	}
	if strings.TrimSpace(msg.Email) == "" {
		return ErrValidation{Field: "email", Reason: "Email is required"}
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return ErrValidation{Field: "email", Reason: "Email address is not valid"}
	}
	if strings.TrimSpace(msg.Message) == "" {
		return ErrValidation{Field: "message", Reason: "Message is required"}
	}
	if len(msg.Message) > MaxMessageLength {
		return ErrValidation{Field: "message", Reason: fmt.Sprintf("Message is too long (max %d characters)", MaxMessageLength)}
	}
	return nil
}

// Submit validates the message and emails it to the site owner. Delivery
// failures come back as ErrDeliveryFailed so handlers can tell the visitor
// to retry.
func (s *ContactService) Submit(ctx context.Context, msg Message) error {
	if err := Validate(msg); err != nil {
		return err
	}

	subject := fmt.Sprintf("[bbotir.xyz] Contact from %s", msg.Name)
	err := s.sender.Send(notification.ContactMessageNotice, notification.EmailSystem, notification.NotificationData{
		To:      s.ownerEmail,
		Subject: subject,
		Data: map[string]string{
			"name":    msg.Name,
			"email":   msg.Email,
			"message": msg.Message,
			"sent_at": time.Now().UTC().Format(time.RFC1123),
		},
	})
	if err != nil {
		slog.Error("Failed to deliver contact message", "from", msg.Email, "err", err)
		return ErrDeliveryFailed
	}

	slog.Info("Contact message delivered", "from", msg.Email)
	return nil
}
