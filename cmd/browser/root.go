package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"post_browser/internal/config"
	"post_browser/internal/deriver"
	"post_browser/internal/domain"
	"post_browser/internal/publisher"
	"post_browser/internal/service"
	"post_browser/internal/source/jsonplaceholder"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "browser",
		Short:        "Browse, search, sort and page through remote posts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	root.AddCommand(newBrowseCmd(&configPath), newListCmd(&configPath))
	return root
}

// app is the wired object graph shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *service.Controller
	source     *jsonplaceholder.Source
	closers    []io.Closer
}

func newApp(configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		logOut = f
	}
	a.logger = setupLogger(cfg.LogLevel, logOut)

	a.source = jsonplaceholder.New(jsonplaceholder.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, a.logger)

	var pub service.Publisher
	if cfg.Events.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.Events.URL,
			Exchange:   cfg.Events.Exchange,
			RoutingKey: cfg.Events.RoutingKey,
			QueueName:  cfg.Events.QueueName,
		}, a.logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.closers = append(a.closers, rabbitMQ)
		pub = rabbitMQ
	}

	a.controller = service.NewController(
		a.source,
		domain.NewViewState(cfg.Browser.PageSize),
		deriver.New(cfg.Browser.Collation),
		pub,
		a.logger,
	)

	a.logger.Info("post browser ready",
		"source", a.source.Name(),
		"page_size", cfg.Browser.PageSize,
		"collation", cfg.Browser.Collation,
		"events", cfg.Events.Enabled,
	)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}
