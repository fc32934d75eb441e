package supabase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"baas-admin-go/internal/store"
)

// Postgres / PostgREST codes reported for a missing relation.
var missingRelationCodes = map[string]bool{
	"42P01":    true,
	"PGRST205": true,
	"PGRST200": true,
}

const uniqueViolation = "23505"

// Codes for payloads the database rejected: not-null, foreign key and check
// violations, unknown columns, and malformed values (class 22).
var invalidInputCodes = map[string]bool{
	"23502":    true,
	"23503":    true,
	"23514":    true,
	"PGRST204": true,
	"42703":    true,
}

// apiError covers both the REST (code/message/details/hint) and auth
// (code/msg/error_description) error bodies.
type apiError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Details          string `json:"details"`
	Hint             string `json:"hint"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) code() string {
	switch c := e.Code.(type) {
	case string:
		return c
	case nil:
		return e.ErrorCode
	default:
		if e.ErrorCode != "" {
			return e.ErrorCode
		}
		return fmt.Sprint(c)
	}
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func errorFromResponse(op string, resp *http.Response, notFound error) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body apiError
	_ = json.Unmarshal(raw, &body)
	message := body.text()
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	e := &store.Error{Op: op, Status: resp.StatusCode, Message: message}
	code := body.code()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Kind = store.KindAuth
		e.Err = store.ErrUnauthorized
	case missingRelationCodes[code]:
		e.Kind = store.KindNotFound
		e.Err = store.ErrRelationNotFound
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = store.KindNotFound
		e.Err = notFound
	case code == uniqueViolation:
		e.Kind = store.KindConflict
	case invalidInputCodes[code] || strings.HasPrefix(code, "22"):
		e.Kind = store.KindValidation
	case resp.StatusCode == http.StatusConflict:
		e.Kind = store.KindConflict
	default:
		e.Kind = store.KindRemote
	}
	if e.Err == nil {
		e.Err = fmt.Errorf("status %d: %s", resp.StatusCode, message)
	}
	return e
}
