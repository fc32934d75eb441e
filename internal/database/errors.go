package database

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"baas-admin-go/internal/store"

	"github.com/mattn/go-sqlite3"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent validates and quotes a table or column name for interpolation.
func quoteIdent(op, name string) (string, error) {
	if !identifierRegex.MatchString(name) {
		return "", store.Validation(op, "invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// classify maps SQLite failures onto the gateway error taxonomy.
func classify(op string, err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	e := &store.Error{Op: op, Message: se.Error(), Err: err}
	switch {
	case se.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		e.Kind = store.KindValidation
		e.Message = "referenced account does not exist"
	case se.ExtendedCode == sqlite3.ErrConstraintUnique, se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		e.Kind = store.KindConflict
	case se.ExtendedCode == sqlite3.ErrConstraintNotNull:
		e.Kind = store.KindValidation
	case se.Code == sqlite3.ErrError && (strings.Contains(se.Error(), "no such column") || strings.Contains(se.Error(), "has no column named")):
		e.Kind = store.KindValidation
	case se.Code == sqlite3.ErrError && strings.Contains(se.Error(), "no such table"):
		e.Kind = store.KindNotFound
		e.Err = fmt.Errorf("%w: %v", store.ErrRelationNotFound, err)
	case se.Code == sqlite3.ErrBusy, se.Code == sqlite3.ErrLocked, se.Code == sqlite3.ErrCantOpen:
		e.Kind = store.KindTransport
	default:
		e.Kind = store.KindRemote
	}
	return e
}

// expectAffected turns a zero-row update or delete into a not-found error.
func expectAffected(res sql.Result, op string, sentinel error, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to read affected rows: %w", err)
	}
	if n == 0 {
		return &store.Error{Kind: store.KindNotFound, Op: op, Message: fmt.Sprintf(format, args...), Err: sentinel}
	}
	return nil
}
