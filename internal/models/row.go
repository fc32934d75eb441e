package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one record of a relation. Columns keep the order in which they were
// received so the first row of a result can serve as the header list.
type Row struct {
	columns []string
	values  map[string]any
}

// RowOf builds a row from alternating column/value pairs.
func RowOf(pairs ...any) Row {
	if len(pairs)%2 != 0 {
		panic("models.RowOf: odd number of arguments")
	}
	r := Row{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("models.RowOf: column at %d is %T, not string", i, pairs[i]))
		}
		r.Set(col, pairs[i+1])
	}
	return r
}

// Set assigns a value, appending the column if it is new.
func (r *Row) Set(column string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value of a column and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value of a column, nil when absent.
func (r Row) Value(column string) any {
	return r.values[column]
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Row) Len() int {
	return len(r.columns)
}

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy that does not share column storage.
func (r Row) Clone() Row {
	c := Row{values: make(map[string]any, len(r.values))}
	for _, col := range r.columns {
		c.Set(col, r.values[col])
	}
	return c
}

// MarshalJSON writes the row as an object with columns in order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, fmt.Errorf("unable to encode column %s: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order. Numbers decode as json.Number.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = Row{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		col, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in row", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("unable to decode column %s: %w", col, err)
		}
		r.Set(col, v)
	}

	_, err = dec.Token()
	return err
}
