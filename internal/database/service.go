/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Gateway.
var _ store.Gateway = (*Service)(nil)

// Service is a local SQLite stand-in for the remote backend: an accounts
// table plays the identity store and the demo relations live beside it.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(ctx, cfg.CreateDummyUsers); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema(ctx context.Context, createDummyUsers bool) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	// Seed a handful of accounts (and a few rows) for local testing if configured to do so
	if !createDummyUsers {
		zap.L().Info("Skipping dummy account creation (CREATE_DUMMY_USERS=false)")
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, queryCountAccounts).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("Accounts already present, skipping dummy data", zap.Int("accounts", count))
		return nil
	}

	dummies := []struct {
		email string
		name  string
		plan  string
	}{
		{"alice.johnson@example.com", "Alice Johnson", "gold"},
		{"bob.smith@example.com", "Bob Smith", ""},
		{"carol.williams@example.com", "Carol Williams", "silver"},
	}

	for _, d := range dummies {
		id, err := s.insertAccount(ctx, d.email, "changeme", map[string]any{"name": d.name})
		if err != nil {
			zap.L().Error("Failed to insert dummy account", zap.String("email", d.email), zap.Error(err))
			continue
		}
		zap.L().Info("Dummy account created", zap.String("id", id), zap.String("email", d.email))

		if d.plan == "" {
			continue
		}
		if err := s.InsertRow(ctx, "subscriptions", map[string]any{
			"user_id": id,
			"plan":    d.plan,
			"status":  "active",
		}); err != nil {
			zap.L().Error("Failed to insert dummy subscription", zap.String("email", d.email), zap.Error(err))
		}
	}

	return nil
}
