package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"eventcalendar/internal/adapters/ical"
	delivery "eventcalendar/internal/delivery/http"
	"eventcalendar/internal/delivery/http/controllers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/repository/postgres"
	"eventcalendar/internal/services"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply the schema before serving."},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if c.Bool("migrate") {
				if err := postgres.Migrate(ctx, a.pool); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			images, uploadDir := a.imageStore()
			events := services.NewEventService(postgres.NewEventRepository(a.pool), images,
				a.cfg.EventWritePolicy, a.cfg.RequestTimeout, a.logger)
			users := services.NewUserService(a.users, a.cfg.RequestTimeout, a.logger)

			mux := delivery.NewRouter(delivery.RouterConfig{
				Events:        controllers.NewEventController(a.logger, events, ical.NewEncoder("Event Calendar"), a.cfg.Images.MaxUploadBytes),
				Auth:          controllers.NewAuthController(a.logger, a.auth),
				Users:         controllers.NewUserController(a.logger, users),
				Health:        controllers.NewHealthController(a.logger, a.pool),
				Authenticator: services.NewAuthenticator(a.jwt, a.users, a.cfg.RequestTimeout),
				WritePolicy:   a.cfg.EventWritePolicy,
				UploadDir:     uploadDir,
				Logger:        a.logger,
			})
			limiter := middleware.NewRateLimiter(a.cfg.HTTP.RateLimitWindow, a.cfg.HTTP.RateLimitMaxRequests)
			handler := middleware.CORS(a.cfg.HTTP.AllowedOrigins,
				limiter.Middleware(middleware.LoggingMiddleware(a.logger, mux)))

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", srv.Addr, "env", a.cfg.Environment, "writePolicy", a.cfg.EventWritePolicy)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema.",
		Action: func(c *cli.Context) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := postgres.Migrate(c.Context, a.pool); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create a user with the admin role.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			u, err := a.auth.CreateAdmin(c.Context, c.String("name"), c.String("email"), c.String("password"))
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "admin %s created with id %s\n", u.Email, u.ID)
			return nil
		},
	}
}
