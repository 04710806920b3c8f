package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"vehicle/api/internal/config"
	appmw "vehicle/api/internal/httpapi/middleware"
	"vehicle/api/internal/httpapi/router"
	"vehicle/api/internal/logging"
	"vehicle/api/internal/models"
	"vehicle/api/internal/security"
	"vehicle/api/internal/server"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a config file (yaml, json or toml)",
	EnvVars: []string{"VEHICLE_API_CONFIG"},
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "vehicle-api",
		Usage:  "Serve the vehicle REST API",
		Flags:  serveFlags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:  "token",
				Usage: "Issue a development access token signed with AUTH_SECRET_KEY",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "subject", Aliases: []string{"sub"}, Required: true},
					&cli.StringFlag{Name: "username"},
					&cli.StringSliceFlag{Name: "role"},
					&cli.DurationFlag{Name: "ttl", Value: 5 * time.Minute},
				},
				Action: issueToken,
			},
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "host", Usage: "listen host"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port"},
		&cli.StringFlag{Name: "log-level", Usage: "panic, fatal, error, warn, info, debug or trace"},
		&cli.StringFlag{Name: "log-format", Usage: "text or json"},
	}
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	logger := logging.New(cfg)

	var verifier appmw.TokenVerifier
	if cfg.AuthEnabled {
		v, err := security.LoadVerifier(cfg)
		if err != nil {
			return fmt.Errorf("configure auth: %w", err)
		}
		verifier = v
		logger.WithField("required_role", cfg.AuthRequiredRole).Info("bearer token authentication enabled")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(router.New(cfg, logger, verifier), cfg.ShutdownTimeout, logger)
	return srv.ListenAndServe(ctx, cfg.Address())
}

func issueToken(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	principal := models.Principal{
		Subject:  c.String("subject"),
		Username: c.String("username"),
		Roles:    c.StringSlice("role"),
	}
	token, err := security.CreateAccessToken(principal, cfg.AuthSecretKey, cfg.AuthIssuer, c.Duration("ttl"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, token)
	return err
}
