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
	"encoding/json"
	"fmt"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListAccounts returns one page (1-based) of accounts ordered by creation time.
func (s *Service) ListAccounts(ctx context.Context, page, pageSize int) ([]models.Account, error) {
	if page < 1 || pageSize < 1 {
		return nil, store.Validation("list accounts", "page and page size must be positive, got %d/%d", page, pageSize)
	}
	zap.L().Debug("Querying accounts", zap.Int("page", page), zap.Int("page_size", pageSize))

	rows, err := s.db.QueryContext(ctx, queryListAccounts, pageSize, (page-1)*pageSize)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", classify("list accounts", err))
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		var (
			acct     models.Account
			email    sql.NullString
			metadata string
			lastSeen sql.NullTime
		)
		if err := rows.Scan(&acct.Id, &email, &metadata, &acct.CreatedAt, &lastSeen); err != nil {
			zap.L().Error("Failed to scan account row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		acct.Email = email.String
		if lastSeen.Valid {
			t := lastSeen.Time
			acct.LastSignInAt = &t
		}
		acct.Metadata = map[string]any{}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &acct.Metadata); err != nil {
				zap.L().Warn("Account metadata is not valid JSON", zap.String("id", acct.Id), zap.Error(err))
				acct.Metadata = map[string]any{}
			}
		}
		accounts = append(accounts, acct)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Service) CreateAccount(ctx context.Context, email, secret string, metadata map[string]any) error {
	id, err := s.insertAccount(ctx, email, secret, metadata)
	if err != nil {
		return err
	}
	zap.L().Info("Account created", zap.String("id", id), zap.String("email", email))
	return nil
}

func (s *Service) insertAccount(ctx context.Context, email, secret string, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "", store.Validation("create account", "metadata is not serializable: %v", err)
	}

	salt, err := newSalt()
	if err != nil {
		return "", fmt.Errorf("unable to generate salt: %w", err)
	}

	var emailValue any
	if email != "" {
		emailValue = email
	}

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertAccount, id, emailValue, string(encoded), hashSecret(secret, salt), salt); err != nil {
		return "", fmt.Errorf("unable to create account %s: %w", email, classify("create account", err))
	}
	return id, nil
}

func (s *Service) UpdateAccountMetadata(ctx context.Context, accountId string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return store.Validation("update account", "metadata is not serializable: %v", err)
	}

	res, err := s.db.ExecContext(ctx, queryUpdateAccountMetadata, string(encoded), accountId)
	if err != nil {
		return fmt.Errorf("unable to update account %s: %w", accountId, classify("update account", err))
	}
	return expectAffected(res, "update account", store.ErrAccountNotFound, "account %s not found", accountId)
}

func (s *Service) DeleteAccount(ctx context.Context, accountId string) error {
	res, err := s.db.ExecContext(ctx, queryDeleteAccount, accountId)
	if err != nil {
		return fmt.Errorf("unable to delete account %s: %w", accountId, classify("delete account", err))
	}
	return expectAffected(res, "delete account", store.ErrAccountNotFound, "account %s not found", accountId)
}
