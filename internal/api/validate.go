package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"baas-admin-go/internal/store"
	"baas-admin-go/internal/view"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minSecretLength = 6

func validateEmail(op, email string) error {
	if email == "" {
		return store.Validation(op, "email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return store.Validation(op, "invalid email format: %s", email)
	}
	return nil
}

func validateSecret(op, secret string) error {
	if len(secret) < minSecretLength {
		return store.Validation(op, "password must be at least %d characters", minSecretLength)
	}
	return nil
}

// ParseJSONObject accepts a decoded object, raw JSON bytes or a JSON string
// and returns the object. Arrays, scalars and null are rejected.
func ParseJSONObject(v any) (map[string]any, error) {
	var raw []byte
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	case json.RawMessage:
		raw = t
	default:
		return nil, fmt.Errorf("must be a JSON object, got %T", v)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("is not valid JSON: %v", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("has trailing data after the JSON object")
	}

	switch obj := decoded.(type) {
	case map[string]any:
		return obj, nil
	case []any:
		return nil, fmt.Errorf("must be a JSON object, not an array")
	case nil:
		return nil, fmt.Errorf("must be a JSON object, not null")
	default:
		return nil, fmt.Errorf("must be a JSON object, not %T", decoded)
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// validateRow checks fields against the relation's capabilities and returns
// the payload to submit. Updates never rewrite the primary key; inserts keep
// it only when a value is given so generated keys still apply.
func (d *Dashboard) validateRow(op string, spec view.RelationSpec, fields map[string]any, insert bool) (map[string]any, error) {
	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == spec.PrimaryKey && (!insert || isBlank(v)) {
			continue
		}
		payload[k] = v
	}
	if len(payload) == 0 {
		return nil, store.Validation(op, "no fields to save")
	}

	for _, field := range spec.RequiredFields {
		v, present := payload[field]
		if (insert || present) && isBlank(v) {
			return nil, store.Validation(op, "%s is required", field)
		}
	}

	for _, field := range spec.JSONFields {
		v, present := payload[field]
		if !present || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			payload[field] = nil
			continue
		}
		obj, err := ParseJSONObject(v)
		if err != nil {
			return nil, store.Validation(op, "%s %v", field, err)
		}
		payload[field] = obj
	}

	enumFields := make([]string, 0, len(spec.EnumFields))
	for field := range spec.EnumFields {
		enumFields = append(enumFields, field)
	}
	slices.Sort(enumFields)
	for _, field := range enumFields {
		allowed, ok := spec.AllowedValues(field)
		v, present := payload[field]
		if !ok || !present || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString || !slices.Contains(allowed, s) {
			return nil, store.Validation(op, "%s must be one of: %s", field, strings.Join(allowed, ", "))
		}
	}

	for _, field := range spec.ForeignKeyFields {
		v, present := payload[field]
		if !present || v == nil {
			continue
		}
		id := fmt.Sprint(v)
		if _, ok := d.cache.Lookup(id); !ok {
			return nil, store.Validation(op, "%s references unknown account %s", field, id)
		}
	}

	return payload, nil
}
