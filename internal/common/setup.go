package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"baas-admin-go/internal/api"
	"baas-admin-go/internal/config"
	"baas-admin-go/internal/database"
	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"
	"baas-admin-go/internal/supabase"
	"baas-admin-go/internal/view"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Gateway   store.Gateway
	Registry  *view.Registry
	Dashboard *api.Dashboard
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeGateway opens the backend selected by GATEWAY_BACKEND.
func InitializeGateway(ctx context.Context, cfg *models.Config) (store.Gateway, error) {
	switch cfg.Gateway.Backend {
	case config.BackendSupabase:
		zap.L().Info("Using REST gateway", zap.String("url", cfg.Gateway.URL))
		svc, err := supabase.NewService(cfg.Gateway)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.BackendSQLite:
		zap.L().Info("Using SQLite gateway", zap.String("path", cfg.Database.Path))
		svc, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown gateway backend %q", cfg.Gateway.Backend)
	}
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	registry, err := LoadRegistry(cfg.Dashboard.RelationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	zap.L().Info("Loaded tracked relations", zap.Strings("relations", registry.Names()))

	gateway, err := InitializeGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Services{
		Gateway:   gateway,
		Registry:  registry,
		Dashboard: api.NewDashboard(gateway, registry, cfg.Dashboard),
	}, nil
}

func (cs *Services) Close() {
	if cs.Gateway != nil {
		cs.Gateway.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
