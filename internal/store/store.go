package store

import (
	"context"

	"baas-admin-go/internal/models"
)

// ListOptions narrows a row listing.
type ListOptions struct {
	OrderBy    string
	Descending bool
	Limit      int // 0 means backend default
}

// DefaultKeyColumn addresses rows when a RowKey names no column.
const DefaultKeyColumn = "id"

// RowKey identifies a single row by the value of its primary-key column.
type RowKey struct {
	Column string
	Value  any
}

// ColumnName returns the key column, falling back to DefaultKeyColumn.
func (k RowKey) ColumnName() string {
	if k.Column == "" {
		return DefaultKeyColumn
	}
	return k.Column
}

// Gateway is the contract every remote data backend (REST, SQLite, ...) must satisfy.
type Gateway interface {
	// --- Relations ---
	ListRows(ctx context.Context, relation string, opts ListOptions) ([]models.Row, error)
	InsertRow(ctx context.Context, relation string, fields map[string]any) error
	UpdateRow(ctx context.Context, relation string, key RowKey, fields map[string]any) error
	DeleteRow(ctx context.Context, relation string, key RowKey) error

	// --- Accounts ---
	ListAccounts(ctx context.Context, page, pageSize int) ([]models.Account, error)
	CreateAccount(ctx context.Context, email, secret string, metadata map[string]any) error
	UpdateAccountMetadata(ctx context.Context, accountId string, metadata map[string]any) error
	DeleteAccount(ctx context.Context, accountId string) error

	// --- Lifecycle ---
	Close()
}
