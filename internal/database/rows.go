package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"go.uber.org/zap"
)

// accountsTable is never exposed as a relation: it holds secret hashes.
const accountsTable = "accounts"

func (s *Service) relationIdent(ctx context.Context, op, relation string) (string, error) {
	ident, err := quoteIdent(op, relation)
	if err != nil {
		return "", err
	}
	notFound := &store.Error{
		Kind:    store.KindNotFound,
		Op:      op,
		Message: fmt.Sprintf("relation %q does not exist", relation),
		Err:     store.ErrRelationNotFound,
	}
	if relation == accountsTable {
		return "", notFound
	}
	var count int
	if err := s.db.QueryRowContext(ctx, queryTableExists, relation).Scan(&count); err != nil {
		return "", fmt.Errorf("unable to look up relation %s: %w", relation, classify(op, err))
	}
	if count == 0 {
		return "", notFound
	}
	return ident, nil
}

func (s *Service) ListRows(ctx context.Context, relation string, opts store.ListOptions) ([]models.Row, error) {
	table, err := s.relationIdent(ctx, "list rows", relation)
	if err != nil {
		return nil, err
	}

	var query strings.Builder
	query.WriteString("SELECT * FROM " + table)
	if opts.OrderBy != "" {
		col, err := quoteIdent("list rows", opts.OrderBy)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if opts.Descending {
			dir = "DESC"
		}
		query.WriteString(" ORDER BY " + col + " " + dir)
	}
	var args []any
	if opts.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("unable to list %s: %w", relation, classify("list rows", err))
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("unable to read columns of %s: %w", relation, err)
	}

	var out []models.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("unable to scan %s row: %w", relation, err)
		}

		var row models.Row
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row.Set(col, string(b))
				continue
			}
			row.Set(col, values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", relation, err)
	}

	return out, nil
}

func (s *Service) InsertRow(ctx context.Context, relation string, fields map[string]any) error {
	table, err := s.relationIdent(ctx, "insert row", relation)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return store.Validation("insert row", "no fields to insert")
	}

	cols, args, err := bindFields("insert row", fields)
	if err != nil {
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("unable to insert into %s: %w", relation, classify("insert row", err))
	}
	zap.L().Info("Row inserted", zap.String("relation", relation))
	return nil
}

// keyClause validates a row key and returns its WHERE clause and argument.
func keyClause(op string, key store.RowKey) (string, any, error) {
	if key.Value == nil {
		return "", nil, store.Validation(op, "primary key is required")
	}
	col, err := quoteIdent(op, key.ColumnName())
	if err != nil {
		return "", nil, err
	}
	value := key.Value
	if n, ok := value.(json.Number); ok {
		value = n.String()
	}
	return "WHERE " + col + " = ?", value, nil
}

func (s *Service) UpdateRow(ctx context.Context, relation string, key store.RowKey, fields map[string]any) error {
	table, err := s.relationIdent(ctx, "update row", relation)
	if err != nil {
		return err
	}
	where, keyArg, err := keyClause("update row", key)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return store.Validation("update row", "no fields to update")
	}

	cols, args, err := bindFields("update row", fields)
	if err != nil {
		return err
	}
	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = col + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s %s", table, strings.Join(assignments, ", "), where)

	res, err := s.db.ExecContext(ctx, query, append(args, keyArg)...)
	if err != nil {
		return fmt.Errorf("unable to update %s: %w", relation, classify("update row", err))
	}
	return expectAffected(res, "update row", nil, "%s row %v not found", relation, key.Value)
}

func (s *Service) DeleteRow(ctx context.Context, relation string, key store.RowKey) error {
	table, err := s.relationIdent(ctx, "delete row", relation)
	if err != nil {
		return err
	}
	where, keyArg, err := keyClause("delete row", key)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s %s", table, where), keyArg)
	if err != nil {
		return fmt.Errorf("unable to delete from %s: %w", relation, classify("delete row", err))
	}
	return expectAffected(res, "delete row", nil, "%s row %v not found", relation, key.Value)
}

// bindFields returns quoted column names (sorted) and their SQL arguments.
// Objects and arrays are stored as JSON text.
func bindFields(op string, fields map[string]any) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	cols := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		col, err := quoteIdent(op, name)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = col

		switch v := fields[name].(type) {
		case map[string]any, []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, nil, store.Validation(op, "field %s is not serializable: %v", name, err)
			}
			args[i] = string(encoded)
		case json.Number:
			args[i] = v.String()
		default:
			args[i] = v
		}
	}
	return cols, args, nil
}
