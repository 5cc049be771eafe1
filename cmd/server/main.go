package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/config"
	"github.com/garyjia/claims-portal/internal/container"
	httpapi "github.com/garyjia/claims-portal/internal/interfaces/http"
	"github.com/garyjia/claims-portal/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting claims portal", zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}
	if err := app.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}

	services := app.Services()
	serverCfg := httpapi.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxUploadBytes:  cfg.Uploads.MaxFileSize*int64(cfg.Uploads.MaxFiles) + 1<<20,
	}
	if dir := app.LocalFilesDir(); dir != "" {
		if u, err := url.Parse(cfg.Storage.Local.PublicURL); err == nil && u.Path != "" {
			serverCfg.StaticPrefix = u.Path
		}
		serverCfg.StaticDir = dir
	}

	server := httpapi.NewServer(serverCfg, httpapi.Services{
		Claims:        services.Claim,
		Documents:     services.Document,
		Profiles:      services.Profile,
		Notifications: services.Notification,
		Export:        services.Export,
	},
		httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience),
		func() bool { return app.Health().Overall },
		utils.NewSugaredAdapter(logger),
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server stopped with error", zap.Error(err))
	}

	// In-flight contact syncs finish before the database closes.
	if err := app.Close(); err != nil {
		logger.Error("Container closed with errors", zap.Error(err))
	}
	logger.Info("Server exited")
}
