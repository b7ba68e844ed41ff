package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	_ "eventcalendar/docs"
)

// @title Event Calendar API
// @version 1.0
// @description Calendar events with public and private visibility, role-based writes and a public iCalendar feed.

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	app := &cli.App{
		Name:  "eventcalendar",
		Usage: "Event calendar API server.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createAdminCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
