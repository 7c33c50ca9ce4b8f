package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/device"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/login"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/twofa"
)

type DbConfig struct {
	Host     string `env:"PORTFOLIO_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PORTFOLIO_PG_PORT" env-default:"5432"`
	Database string `env:"PORTFOLIO_PG_DATABASE" env-default:"portfolio_db"`
	User     string `env:"PORTFOLIO_PG_USER" env-default:"portfolio"`
	Password string `env:"PORTFOLIO_PG_PASSWORD" env-default:"pwd"`
}

func (d DbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type Config struct {
	DbConfig    DbConfig
	Persistence string `env:"PORTFOLIO_PERSISTENCE" env-default:"file"`
	DataDir     string `env:"PORTFOLIO_DATA_DIR" env-default:"./data"`
	Issuer      string `env:"PORTFOLIO_TOTP_ISSUER" env-default:"bbotir.xyz"`
}

// Pre-enrolls a TOTP device for an account and prints the provisioning URI,
// so an operator can enroll an authenticator app without walking the web
// flow. The device stays unconfirmed until the first code check passes.
func main() {
	username := flag.String("username", "", "Username to set up the authenticator device for (required)")
	qrPath := flag.String("qr", "", "Write the provisioning QR code PNG to this path (default qr_code_<username>.png)")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "Error: username is required")
		flag.Usage()
		os.Exit(1)
	}

	config := Config{}
	cleanenv.ReadEnv(&config)

	ctx := context.Background()

	loginRepoConfig := login.RepositoryConfig{DataDir: config.DataDir}
	deviceRepoConfig := device.RepositoryConfig{DataDir: config.DataDir}
	if config.Persistence == "postgres" || config.Persistence == "postgresql" {
		dbConfig := config.DbConfig.toDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(1)
		}
		loginRepoConfig.DB = pool
		deviceRepoConfig.DB = pool
	}

	loginRepo, err := login.NewLoginRepository(config.Persistence, loginRepoConfig)
	if err != nil {
		slog.Error("Failed creating login repository", "persistence", config.Persistence, "err", err)
		os.Exit(1)
	}
	deviceRepo, err := device.NewDeviceRepository(config.Persistence, deviceRepoConfig)
	if err != nil {
		slog.Error("Failed creating device repository", "persistence", config.Persistence, "err", err)
		os.Exit(1)
	}

	loginService := login.NewLoginService(loginRepo)
	record, err := loginService.GetByUsername(ctx, *username)
	if err != nil {
		if errors.Is(err, login.ErrLoginNotFound) {
			fmt.Fprintf(os.Stderr, "Error: login %q not found\n", *username)
		} else {
			fmt.Fprintf(os.Stderr, "Error: failed to look up login %q: %v\n", *username, err)
		}
		os.Exit(1)
	}

	if confirmed, err := deviceRepo.FindConfirmedByLoginID(ctx, record.ID); err == nil {
		fmt.Fprintf(os.Stderr, "Login %q already has a confirmed device %q.\n", *username, confirmed.Name)
		fmt.Fprintln(os.Stderr, "Delete the existing device first to enroll a new one.")
		os.Exit(1)
	} else if !errors.Is(err, device.ErrDeviceNotFound) {
		fmt.Fprintf(os.Stderr, "Error: failed to look up devices: %v\n", err)
		os.Exit(1)
	}

	secret, err := twofa.GenerateTotpSecret(config.Issuer, *username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to generate secret: %v\n", err)
		os.Exit(1)
	}

	// Reuses an existing unconfirmed device, so rerunning the command never
	// rotates a secret an authenticator app may already hold.
	dev, err := deviceRepo.GetOrCreateUnconfirmed(ctx, device.GetOrCreateDeviceParams{
		LoginID:   record.ID,
		Name:      device.DefaultDeviceName,
		SecretKey: secret,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create device: %v\n", err)
		os.Exit(1)
	}

	configURL := twofa.BuildProvisioningURI(dev.SecretKey, config.Issuer, *username)

	fmt.Printf("Authenticator setup for %q\n\n", *username)
	fmt.Println("Scan the QR code with a TOTP app, or enter the URI manually:")
	fmt.Println(configURL)

	path := *qrPath
	if path == "" {
		path = fmt.Sprintf("qr_code_%s.png", *username)
	}
	if err := writeQRCode(configURL, path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write QR code file: %v\n", err)
	} else {
		fmt.Printf("\nQR code saved to %s\n", path)
	}

	fmt.Println("\nAfter scanning, log in and confirm the device with a 6-digit code.")
}

func writeQRCode(configURL, path string) error {
	encoded, err := twofa.RenderQRCode(configURL, 256)
	if err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}
