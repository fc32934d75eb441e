package view

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"baas-admin-go/internal/models"

	"github.com/shopspring/decimal"
)

// View is the display-ready row set of one relation.
type View struct {
	Relation string       `json:"relation"`
	Headers  []string     `json:"headers"`
	Rows     []models.Row `json:"rows"`
}

// Build merges a relation's raw rows with the account snapshot.
//
// For denormalized relations every snapshot account appears at least once:
// accounts without rows get a placeholder whose primary key and non-owner
// columns are nil. Rows referencing an unknown account are kept and sort
// with an empty email. Other relations pass through ordered by primary key
// descending. Build does not modify its inputs.
func Build(spec RelationSpec, rawRows []models.Row, snapshot []models.Account) View {
	spec = spec.withDefaults()
	headers := headersFor(spec, rawRows)

	if !spec.Denormalize {
		rows := slices.Clone(rawRows)
		slices.SortStableFunc(rows, func(a, b models.Row) int {
			return compareNullsLast(a.Value(spec.PrimaryKey), b.Value(spec.PrimaryKey), true)
		})
		return View{Relation: spec.Name, Headers: headers, Rows: rows}
	}

	grouped := make(map[string][]models.Row)
	for _, row := range rawRows {
		owner := ownerKey(row.Value(spec.OwnerField))
		grouped[owner] = append(grouped[owner], row)
	}

	emails := make(map[string]string, len(snapshot))
	rows := make([]models.Row, 0, len(rawRows)+len(snapshot))
	for _, acct := range snapshot {
		if _, seen := emails[acct.Id]; seen {
			continue
		}
		emails[acct.Id] = acct.Email

		if owned := grouped[acct.Id]; len(owned) > 0 {
			rows = append(rows, owned...)
			continue
		}
		rows = append(rows, placeholder(spec, headers, acct.Id))
	}

	for _, row := range rawRows {
		if _, known := emails[ownerKey(row.Value(spec.OwnerField))]; !known {
			rows = append(rows, row)
		}
	}

	slices.SortStableFunc(rows, func(a, b models.Row) int {
		ea := emails[ownerKey(a.Value(spec.OwnerField))]
		eb := emails[ownerKey(b.Value(spec.OwnerField))]
		if c := strings.Compare(ea, eb); c != 0 {
			return c
		}
		return compareNullsLast(a.Value(spec.PrimaryKey), b.Value(spec.PrimaryKey), false)
	})

	return View{Relation: spec.Name, Headers: headers, Rows: rows}
}

// IsPlaceholder reports whether a display row stands in for an account without rows.
func IsPlaceholder(spec RelationSpec, row models.Row) bool {
	spec = spec.withDefaults()
	return spec.Denormalize && row.Value(spec.PrimaryKey) == nil
}

func headersFor(spec RelationSpec, rawRows []models.Row) []string {
	if len(rawRows) > 0 {
		return rawRows[0].Columns()
	}
	return slices.Clone(spec.FallbackHeaders)
}

func placeholder(spec RelationSpec, headers []string, accountId string) models.Row {
	var row models.Row
	for _, h := range headers {
		if h == spec.OwnerField {
			row.Set(h, accountId)
			continue
		}
		row.Set(h, nil)
	}
	if _, ok := row.Get(spec.PrimaryKey); !ok {
		row.Set(spec.PrimaryKey, nil)
	}
	if _, ok := row.Get(spec.OwnerField); !ok {
		row.Set(spec.OwnerField, accountId)
	}
	return row
}

func ownerKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// compareNullsLast orders primary keys ascending (or descending) with nil
// keys after every non-nil key.
func compareNullsLast(a, b any, descending bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if descending {
		return compareKeys(b, a)
	}
	return compareKeys(a, b)
}

// compareKeys orders two non-nil keys. Numeric keys sort before
// non-numeric ones; numbers compare by value and the rest lexically.
func compareKeys(a, b any) int {
	da, okA := toDecimal(a)
	db, okB := toDecimal(b)
	switch {
	case okA && okB:
		return da.Cmp(db)
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(t)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
