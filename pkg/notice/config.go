package notice

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notification"
)

// LoadSMTPConfigFromEnv loads SMTP configuration from environment variables
func LoadSMTPConfigFromEnv() (notification.SMTPConfig, error) {
	port, err := strconv.Atoi(getEnvOrDefault("SMTP_PORT", "587"))
	if err != nil {
		return notification.SMTPConfig{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config := notification.SMTPConfig{
		Host:     getEnvOrDefault("SMTP_HOST", "localhost"),
		Port:     port,
		TLS:      getEnvOrDefault("SMTP_TLS", "true") == "true",
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
	}

	if config.From == "" {
		return notification.SMTPConfig{}, fmt.Errorf("SMTP_FROM is required")
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
