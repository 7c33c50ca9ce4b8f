package notice

import (
	"embed"
	"log/slog"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notification"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile("templates/" + filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager builds a notification manager with an email notifier
// and the portfolio's notice templates registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	err = notificationManager.RegisterNotification(notification.ContactMessageNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "New contact message",
		Text:    loadTemplate("email/contact_message.tmpl"),
		Html:    loadTemplate("email/contact_message.html"),
	})
	if err != nil {
		slog.Error("failed to register contact message notification", "error", err)
		return nil, err
	}

	return notificationManager, nil
}
