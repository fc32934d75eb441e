package api

import (
	"context"

	"baas-admin-go/internal/store"

	"go.uber.org/zap"
)

// InsertRow validates and inserts a row, then reloads the relation.
func (d *Dashboard) InsertRow(ctx context.Context, relation string, fields map[string]any) error {
	const op = "insert row"
	spec, err := d.registry.Lookup(relation)
	if err != nil {
		return err
	}
	d.ensureAccounts(ctx)

	payload, err := d.validateRow(op, spec, fields, true)
	if err != nil {
		return err
	}
	if err := d.gateway.InsertRow(ctx, relation, payload); err != nil {
		zap.L().Error("Failed to insert row", zap.String("relation", relation), zap.Error(err))
		return err
	}

	zap.L().Info("Row inserted", zap.String("relation", relation))
	d.refetch(ctx, relation)
	return nil
}

// UpdateRow validates and updates a row by primary key, then reloads the relation.
func (d *Dashboard) UpdateRow(ctx context.Context, relation string, primaryKey any, fields map[string]any) error {
	const op = "update row"
	spec, err := d.registry.Lookup(relation)
	if err != nil {
		return err
	}
	if isBlank(primaryKey) {
		return store.Validation(op, "%s is required to update a row", spec.PrimaryKey)
	}
	d.ensureAccounts(ctx)

	payload, err := d.validateRow(op, spec, fields, false)
	if err != nil {
		return err
	}
	key := store.RowKey{Column: spec.PrimaryKey, Value: primaryKey}
	if err := d.gateway.UpdateRow(ctx, relation, key, payload); err != nil {
		zap.L().Error("Failed to update row",
			zap.String("relation", relation),
			zap.Any("primary_key", primaryKey),
			zap.Error(err))
		return err
	}

	zap.L().Info("Row updated", zap.String("relation", relation), zap.Any("primary_key", primaryKey))
	d.refetch(ctx, relation)
	return nil
}

// DeleteRow deletes a row by primary key, then reloads the relation.
func (d *Dashboard) DeleteRow(ctx context.Context, relation string, primaryKey any) error {
	const op = "delete row"
	spec, err := d.registry.Lookup(relation)
	if err != nil {
		return err
	}
	if isBlank(primaryKey) {
		return store.Validation(op, "%s is required to delete a row", spec.PrimaryKey)
	}

	key := store.RowKey{Column: spec.PrimaryKey, Value: primaryKey}
	if err := d.gateway.DeleteRow(ctx, relation, key); err != nil {
		zap.L().Error("Failed to delete row",
			zap.String("relation", relation),
			zap.Any("primary_key", primaryKey),
			zap.Error(err))
		return err
	}

	zap.L().Info("Row deleted", zap.String("relation", relation), zap.Any("primary_key", primaryKey))
	d.refetch(ctx, relation)
	return nil
}
