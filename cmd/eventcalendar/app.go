package main

import (
	"fmt"
	"log/slog"

	"eventcalendar/config"
	"eventcalendar/internal/adapters/auth"
	"eventcalendar/internal/adapters/email"
	"eventcalendar/internal/adapters/storage"
	"eventcalendar/internal/domain"
	"eventcalendar/internal/repository/postgres"
	"eventcalendar/internal/services"
)

// app holds the wiring shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *postgres.Pool

	users domain.UserRepository
	auth  domain.AuthService
	jwt   *auth.JWT
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	pool := postgres.NewPool(postgres.Options{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)

	users := postgres.NewUserRepository(pool)
	jwt := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.From,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Images.AWSAccessKeyID,
			SecretAccessKey: cfg.Images.AWSSecretAccessKey,
		},
	}, logger)
	emails := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authSvc := services.NewAuthService(users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), jwt, auth.NewResetTokens(),
		emails, cfg.HTTP.FrontendURL, cfg.RequestTimeout, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		users:  users,
		auth:   authSvc,
		jwt:    jwt,
	}, nil
}

// imageStore returns the configured store and, for the local store, the
// directory to serve under /uploads/.
func (a *app) imageStore() (domain.ImageStore, string) {
	img := a.cfg.Images
	if img.Store == "s3" {
		return storage.NewS3Store(storage.S3Config{
			Bucket:          img.S3Bucket,
			Region:          img.S3Region,
			Endpoint:        img.S3Endpoint,
			AccessKeyID:     img.AWSAccessKeyID,
			SecretAccessKey: img.AWSSecretAccessKey,
		}), ""
	}
	local := storage.NewLocalStore(img.UploadPath, img.PublicBaseURL+"/uploads")
	return local, local.Dir()
}

func (a *app) close() {
	if err := a.pool.Close(); err != nil {
		a.logger.Warn("closing database pool", "err", err)
	}
}
