package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"
)

func relationPath(relation string) string {
	return restPrefix + "/" + url.PathEscape(relation)
}

// pkFilter renders a primary key as a PostgREST equality filter.
func pkFilter(primaryKey any) (string, error) {
	switch v := primaryKey.(type) {
	case nil:
		return "", fmt.Errorf("primary key is required")
	case string:
		if v == "" {
			return "", fmt.Errorf("primary key is required")
		}
		return "eq." + v, nil
	case json.Number:
		return "eq." + v.String(), nil
	case int:
		return "eq." + strconv.Itoa(v), nil
	case int64:
		return "eq." + strconv.FormatInt(v, 10), nil
	case float64:
		return "eq." + strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "eq." + fmt.Sprint(v), nil
	}
}

func (s *Service) ListRows(ctx context.Context, relation string, opts store.ListOptions) ([]models.Row, error) {
	query := url.Values{"select": {"*"}}
	if opts.OrderBy != "" {
		dir := "asc"
		if opts.Descending {
			dir = "desc"
		}
		query.Set("order", opts.OrderBy+"."+dir)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var rows []models.Row
	err := s.do(ctx, request{
		op:       "list rows",
		method:   http.MethodGet,
		path:     relationPath(relation),
		query:    query,
		notFound: store.ErrRelationNotFound,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("unable to list %s: %w", relation, err)
	}
	return rows, nil
}

func (s *Service) InsertRow(ctx context.Context, relation string, fields map[string]any) error {
	err := s.do(ctx, request{
		op:       "insert row",
		method:   http.MethodPost,
		path:     relationPath(relation),
		body:     fields,
		headers:  map[string]string{"Prefer": "return=minimal"},
		notFound: store.ErrRelationNotFound,
	}, nil)
	if err != nil {
		return fmt.Errorf("unable to insert into %s: %w", relation, err)
	}
	return nil
}

// keyQuery renders a row key as a PostgREST filter on its column.
func keyQuery(op string, key store.RowKey) (url.Values, error) {
	filter, err := pkFilter(key.Value)
	if err != nil {
		return nil, store.Validation(op, "%v", err)
	}
	return url.Values{key.ColumnName(): {filter}}, nil
}

// affectedRows requires at least one returned row. PostgREST answers an
// update or delete that matched nothing with an empty representation.
func affectedRows(op, relation string, key store.RowKey, returned []json.RawMessage) error {
	if len(returned) > 0 {
		return nil
	}
	return &store.Error{
		Kind:    store.KindNotFound,
		Op:      op,
		Message: fmt.Sprintf("%s row %v not found", relation, key.Value),
	}
}

func (s *Service) UpdateRow(ctx context.Context, relation string, key store.RowKey, fields map[string]any) error {
	query, err := keyQuery("update row", key)
	if err != nil {
		return err
	}
	var returned []json.RawMessage
	err = s.do(ctx, request{
		op:       "update row",
		method:   http.MethodPatch,
		path:     relationPath(relation),
		query:    query,
		body:     fields,
		headers:  map[string]string{"Prefer": "return=representation"},
		notFound: store.ErrRelationNotFound,
	}, &returned)
	if err != nil {
		return fmt.Errorf("unable to update %s: %w", relation, err)
	}
	return affectedRows("update row", relation, key, returned)
}

func (s *Service) DeleteRow(ctx context.Context, relation string, key store.RowKey) error {
	query, err := keyQuery("delete row", key)
	if err != nil {
		return err
	}
	var returned []json.RawMessage
	err = s.do(ctx, request{
		op:       "delete row",
		method:   http.MethodDelete,
		path:     relationPath(relation),
		query:    query,
		headers:  map[string]string{"Prefer": "return=representation"},
		notFound: store.ErrRelationNotFound,
	}, &returned)
	if err != nil {
		return fmt.Errorf("unable to delete from %s: %w", relation, err)
	}
	return affectedRows("delete row", relation, key, returned)
}
