package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/casestudy"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/contact"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/device"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/login"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/loginflow"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/notice"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/ratelimit"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/token"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/webapp"
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

type JwtConfig struct {
	JwtSecret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	CookieHttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
}

type SmtpConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	TLS      bool   `env:"SMTP_TLS" env-default:"true"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"noreply@bbotir.xyz"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" env-default:"admin"`
	Password string `env:"ADMIN_PASSWORD"`
}

type Config struct {
	DbConfig    DbConfig
	AppConfig   app.AppConfig
	JwtConfig   JwtConfig
	SmtpConfig  SmtpConfig
	AdminConfig AdminConfig

	// Persistence selects the storage backend: postgres, file or memory.
	Persistence string `env:"PORTFOLIO_PERSISTENCE" env-default:"file"`
	DataDir     string `env:"PORTFOLIO_DATA_DIR" env-default:"./data"`
	CVPath      string `env:"PORTFOLIO_CV_PATH" env-default:"./static/cv.pdf"`
	OwnerEmail  string `env:"PORTFOLIO_OWNER_EMAIL" env-default:"contact@bbotir.xyz"`
	Issuer      string `env:"PORTFOLIO_TOTP_ISSUER" env-default:"bbotir.xyz"`
	BaseURL     string `env:"PORTFOLIO_BASE_URL" env-default:"https://bbotir.xyz"`
}

func main() {
	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	// Repositories
	loginRepoConfig := login.RepositoryConfig{DataDir: config.DataDir}
	deviceRepoConfig := device.RepositoryConfig{DataDir: config.DataDir}
	caseStudyRepoConfig := casestudy.RepositoryConfig{DataDir: config.DataDir}

	if config.Persistence == "postgres" || config.Persistence == "postgresql" {
		dbConfig := config.DbConfig.toDbConfig()
		pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			os.Exit(-1)
		}
		loginRepoConfig.DB = pool
		deviceRepoConfig.DB = pool
		caseStudyRepoConfig.DB = pool
	}

	loginRepo, err := login.NewLoginRepository(config.Persistence, loginRepoConfig)
	if err != nil {
		slog.Error("Failed creating login repository", "persistence", config.Persistence, "err", err)
		os.Exit(-1)
	}
	deviceRepo, err := device.NewDeviceRepository(config.Persistence, deviceRepoConfig)
	if err != nil {
		slog.Error("Failed creating device repository", "persistence", config.Persistence, "err", err)
		os.Exit(-1)
	}
	caseStudyRepo, err := casestudy.NewCaseStudyRepository(config.Persistence, caseStudyRepoConfig)
	if err != nil {
		slog.Error("Failed creating case-study repository", "persistence", config.Persistence, "err", err)
		os.Exit(-1)
	}

	// Services
	loginService := login.NewLoginService(loginRepo)
	seedAdminLogin(loginService, config.AdminConfig)

	flowService := loginflow.NewLoginFlowService(
		loginService,
		deviceRepo,
		loginflow.WithIssuer(config.Issuer),
	)

	generator := token.NewJwtTokenGenerator(config.JwtConfig.JwtSecret, config.Issuer, config.BaseURL)
	tokenService := token.NewTokenService(generator)
	cookieSetter := token.NewCookieSetter(config.JwtConfig.CookieHttpOnly, config.JwtConfig.CookieSecure)
	tokenCookieService := token.NewTokenCookieService(tokenService, cookieSetter)

	caseStudyService := casestudy.NewCaseStudyService(caseStudyRepo)

	// Explicit SMTP env settings win; without a configured sender fall back
	// to the application defaults.
	smtpConfig, err := notice.LoadSMTPConfigFromEnv()
	if err != nil {
		copier.Copy(&smtpConfig, &config.SmtpConfig)
	}
	notificationManager, err := notice.NewNotificationManager(smtpConfig)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}
	contactService := contact.NewContactService(notificationManager, config.OwnerEmail)

	// Middleware
	rateLimiter := ratelimit.NewMiddleware(ratelimit.DefaultConfig())
	server.R.Use(rateLimiter.Handler)

	authMiddleware := webapp.NewAuthMiddleware(tokenService)
	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)

	// Routes
	webHandle := webapp.NewHandle(flowService, tokenCookieService, config.CVPath,
		webapp.WithLimitResetter(rateLimiter))
	webapp.Routes(server.R, webHandle, authMiddleware)

	caseStudyHandle := casestudy.NewHandle(caseStudyService)
	contactHandle := contact.NewHandle(contactService)

	server.R.Route("/api", func(r chi.Router) {
		casestudy.Routes(r, caseStudyHandle)
		contact.Routes(r, contactHandle)

		r.Get("/home", func(w http.ResponseWriter, req *http.Request) {
			homeHandler(w, req, caseStudyService)
		})

		// Admin API: verified access token required.
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verify(tokenAuth, tokenFromAccessCookie))
			r.Use(jwtauth.Authenticator(tokenAuth))
			r.Use(requireTwofaVerified)
			casestudy.AdminRoutes(r, caseStudyHandle)
		})
	})

	slog.Info("Portfolio service ready", "persistence", config.Persistence, "issuer", config.Issuer)
	server.Run()
}

// seedAdminLogin creates the single admin account on first start. Skipped
// when no password is configured or the account already exists.
func seedAdminLogin(loginService *login.LoginService, config AdminConfig) {
	if config.Password == "" {
		slog.Info("ADMIN_PASSWORD not set, skipping admin seeding")
		return
	}

	_, err := loginService.CreateLogin(context.Background(), config.Username, config.Password)
	if err != nil {
		var existsErr login.ErrUsernameAlreadyExists
		if errors.As(err, &existsErr) {
			slog.Info("Admin login already exists", "username", config.Username)
			return
		}
		slog.Error("Failed seeding admin login", "username", config.Username, "err", err)
		os.Exit(-1)
	}
	slog.Info("Seeded admin login", "username", config.Username)
}

// tokenFromAccessCookie extracts the verified-session JWT for jwtauth.
func tokenFromAccessCookie(r *http.Request) string {
	cookie, err := r.Cookie(token.ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireTwofaVerified rejects tokens that never passed the second factor.
func requireTwofaVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if verified, ok := claims["twofa_verified"].(bool); !ok || !verified {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// homeHandler returns the home page payload: the owner's headline plus a
// preview of published case studies.
func homeHandler(w http.ResponseWriter, r *http.Request, caseStudyService *casestudy.CaseStudyService) {
	studies, err := caseStudyService.HomePreview(r.Context())
	if err != nil {
		slog.Error("Failed building home preview", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	type homeResponse struct {
		Name        string                `json:"name"`
		Headline    string                `json:"headline"`
		CaseStudies []casestudy.CaseStudy `json:"case_studies"`
	}
	render.JSON(w, r, homeResponse{
		Name:        "Botir Bakhtiyarov",
		Headline:    "Software engineer building reliable backend systems.",
		CaseStudies: studies,
	})
}
