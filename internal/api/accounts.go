package api

import (
	"context"
	"strings"

	"baas-admin-go/internal/store"

	"go.uber.org/zap"
)

// CreateAccount validates and creates an identity-store account. metadata may
// be nil, a decoded object or JSON text.
func (d *Dashboard) CreateAccount(ctx context.Context, email, secret string, metadata any) error {
	const op = "create account"
	email = strings.TrimSpace(email)
	if err := validateEmail(op, email); err != nil {
		return err
	}
	if err := validateSecret(op, secret); err != nil {
		return err
	}

	meta := map[string]any{}
	if !isBlank(metadata) {
		parsed, err := ParseJSONObject(metadata)
		if err != nil {
			return store.Validation(op, "metadata %v", err)
		}
		meta = parsed
	}

	if err := d.gateway.CreateAccount(ctx, email, secret, meta); err != nil {
		zap.L().Error("Failed to create account", zap.String("email", email), zap.Error(err))
		return err
	}

	zap.L().Info("Account created", zap.String("email", email))
	d.refetchAfterAccountChange(ctx)
	return nil
}

// UpdateAccountMetadata replaces an account's metadata document.
func (d *Dashboard) UpdateAccountMetadata(ctx context.Context, accountId string, metadata any) error {
	const op = "update account"
	if strings.TrimSpace(accountId) == "" {
		return store.Validation(op, "account id is required")
	}
	if isBlank(metadata) {
		return store.Validation(op, "metadata is required")
	}
	meta, err := ParseJSONObject(metadata)
	if err != nil {
		return store.Validation(op, "metadata %v", err)
	}

	if err := d.gateway.UpdateAccountMetadata(ctx, accountId, meta); err != nil {
		zap.L().Error("Failed to update account", zap.String("id", accountId), zap.Error(err))
		return err
	}

	zap.L().Info("Account metadata updated", zap.String("id", accountId))
	d.refetchAfterAccountChange(ctx)
	return nil
}

func (d *Dashboard) DeleteAccount(ctx context.Context, accountId string) error {
	const op = "delete account"
	if strings.TrimSpace(accountId) == "" {
		return store.Validation(op, "account id is required")
	}

	if err := d.gateway.DeleteAccount(ctx, accountId); err != nil {
		zap.L().Error("Failed to delete account", zap.String("id", accountId), zap.Error(err))
		return err
	}

	zap.L().Info("Account deleted", zap.String("id", accountId))
	d.refetchAfterAccountChange(ctx)
	return nil
}
