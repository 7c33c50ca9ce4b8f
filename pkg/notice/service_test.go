package notice

import (
	"os"
	"strings"
	"testing"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notification"
)

func TestLoadTemplate(t *testing.T) {
	text := loadTemplate("email/contact_message.tmpl")
	if text == "" {
		t.Fatal("contact message text template is empty")
	}
	if !strings.Contains(text, "{{.message}}") {
		t.Error("text template missing message placeholder")
	}

	html := loadTemplate("email/contact_message.html")
	if html == "" {
		t.Fatal("contact message HTML template is empty")
	}
	if !strings.Contains(html, "{{.email}}") {
		t.Error("HTML template missing email placeholder")
	}
}

func TestLoadTemplateMissing(t *testing.T) {
	if got := loadTemplate("email/no_such_template.tmpl"); got != "" {
		t.Errorf("expected empty string for missing template, got %q", got)
	}
}

func TestLoadSMTPConfigFromEnv(t *testing.T) {
	os.Setenv("SMTP_USERNAME", "owner@example.com")
	os.Setenv("SMTP_PASSWORD", "password")
	t.Cleanup(func() {
		os.Unsetenv("SMTP_USERNAME")
		os.Unsetenv("SMTP_PASSWORD")
		os.Unsetenv("SMTP_HOST")
		os.Unsetenv("SMTP_PORT")
		os.Unsetenv("SMTP_FROM")
	})

	config, err := LoadSMTPConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadSMTPConfigFromEnv() error = %v", err)
	}

	if config.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", config.Host)
	}
	if config.Port != 587 {
		t.Errorf("Expected default port 587, got %d", config.Port)
	}
	if config.From != "owner@example.com" {
		t.Errorf("Expected from to match username, got %s", config.From)
	}

	os.Setenv("SMTP_HOST", "custom.smtp.com")
	os.Setenv("SMTP_PORT", "465")
	os.Setenv("SMTP_FROM", "custom@example.com")

	config, err = LoadSMTPConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadSMTPConfigFromEnv() error = %v", err)
	}

	if config.Host != "custom.smtp.com" {
		t.Errorf("Expected custom host custom.smtp.com, got %s", config.Host)
	}
	if config.Port != 465 {
		t.Errorf("Expected custom port 465, got %d", config.Port)
	}
	if config.From != "custom@example.com" {
		t.Errorf("Expected custom from custom@example.com, got %s", config.From)
	}
}

func TestNewNotificationManagerRegistersContactNotice(t *testing.T) {
	manager, err := NewNotificationManager(notification.SMTPConfig{
		Host: "localhost",
		Port: 1025,
		From: "noreply@bbotir.xyz",
	})
	if err != nil {
		t.Fatalf("NewNotificationManager() error = %v", err)
	}
	if manager == nil {
		t.Fatal("NewNotificationManager() returned nil manager")
	}
}
