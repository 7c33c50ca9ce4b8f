package notification

import (
	"testing"
)

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if nm.notifiers == nil {
		t.Error("notifiers map not initialized")
	}
	if nm.noticeRegistry == nil {
		t.Error("noticeRegistry map not initialized")
	}
}

func TestRegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}

	nm.RegisterNotifier(EmailSystem, mockNotifier)
	if n, exists := nm.notifiers[EmailSystem]; !exists {
		t.Error("Notifier not registered")
	} else if n != mockNotifier {
		t.Error("Wrong notifier registered")
	}

	// Test overwriting existing notifier
	newMockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, newMockNotifier)
	if n := nm.notifiers[EmailSystem]; n != newMockNotifier {
		t.Error("Notifier not overwritten")
	}
}

func TestRegisterNotification(t *testing.T) {
	nm := NewNotificationManager()

	tests := []struct {
		name        string
		noticeType  NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{
			name:        "Valid registration with both Text and Html",
			noticeType:  ContactMessageNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Contact", Text: "New message", Html: "<p>New message</p>"},
			shouldError: false,
		},
		{
			name:        "Empty notice type",
			noticeType:  "",
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Contact", Text: "New message"},
			shouldError: true,
		},
		{
			name:        "Empty system",
			noticeType:  ContactMessageNotice,
			system:      "",
			template:    NoticeTemplate{Subject: "Contact", Text: "New message"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nm.RegisterNotification(tt.noticeType, tt.system, tt.template)
			if tt.shouldError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.shouldError {
				if template, exists := nm.noticeRegistry[tt.noticeType][tt.system]; !exists {
					t.Error("Template not registered")
				} else if template.Subject != tt.template.Subject {
					t.Errorf("Wrong subject registered. Got %s, want %s", template.Subject, tt.template.Subject)
				}
			}
		})
	}
}

func TestSend(t *testing.T) {
	nm := NewNotificationManager()
	mockEmailNotifier := &MockNotifier{}

	nm.RegisterNotifier(EmailSystem, mockEmailNotifier)

	err := nm.RegisterNotification(ContactMessageNotice, EmailSystem, NoticeTemplate{
		Subject: "New contact message",
		Text:    "From {{.name}}: {{.message}}",
	})
	if err != nil {
		t.Fatalf("Failed to register notification: %v", err)
	}

	testData := NotificationData{
		To:      "owner@example.com",
		Subject: "Test Subject",
		Data:    map[string]string{"name": "Visitor", "message": "Hello"},
	}

	err = nm.Send(ContactMessageNotice, EmailSystem, testData)
	if err != nil {
		t.Errorf("Failed to send notification: %v", err)
	}

	if len(mockEmailNotifier.SentNotifications) != 1 {
		t.Error("Email notification not sent")
	} else {
		sent := mockEmailNotifier.SentNotifications[0]
		if sent.To != testData.To || sent.Subject != testData.Subject {
			t.Error("Email notification data mismatch")
		}
	}
}

func TestSendErrors(t *testing.T) {
	nm := NewNotificationManager()

	// Unregistered notice type
	err := nm.Send("unregistered", EmailSystem, NotificationData{})
	if err == nil {
		t.Error("Expected error for unregistered notice type")
	}

	// Registered template but no notifier for the system
	err = nm.RegisterNotification(ContactMessageNotice, EmailSystem, NoticeTemplate{Subject: "Contact", Text: "body"})
	if err != nil {
		t.Fatalf("Failed to register notification: %v", err)
	}

	err = nm.Send(ContactMessageNotice, EmailSystem, NotificationData{})
	if err == nil {
		t.Error("Expected error for missing notifier")
	} else if err.Error() != "no notifier registered for system: email" {
		t.Errorf("Unexpected error message: %v", err)
	}
}
