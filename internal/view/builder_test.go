package view

import (
	"encoding/json"
	"slices"
	"testing"

	"baas-admin-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptions = RelationSpec{
	Name:            "subscriptions",
	Denormalize:     true,
	FallbackHeaders: []string{"id", "user_id", "plan", "status"},
}

var referralCodes = RelationSpec{
	Name:            "referral_codes",
	FallbackHeaders: []string{"id", "code", "discount"},
}

func accounts(pairs ...string) []models.Account {
	var out []models.Account
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.Account{Id: pairs[i], Email: pairs[i+1]})
	}
	return out
}

func TestBuild_PlaceholderForAccountWithoutRows(t *testing.T) {
	snapshot := accounts("u1", "a@x.com", "u2", "b@x.com")
	raw := []models.Row{models.RowOf("id", 5, "user_id", "u1", "plan", "silver")}

	v := Build(subscriptions, raw, snapshot)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, []string{"id", "user_id", "plan"}, v.Headers)
	assert.Equal(t, models.RowOf("id", 5, "user_id", "u1", "plan", "silver"), v.Rows[0])
	assert.Equal(t, models.RowOf("id", nil, "user_id", "u2", "plan", nil), v.Rows[1])

	out, err := json.Marshal(v.Rows)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":5,"user_id":"u1","plan":"silver"},{"id":null,"user_id":"u2","plan":null}]`, string(out))
}

func TestBuild_EveryAccountAppearsAtLeastOnce(t *testing.T) {
	snapshot := accounts("u1", "c@x.com", "u2", "a@x.com", "u3", "b@x.com")
	raw := []models.Row{
		models.RowOf("id", 1, "user_id", "u1", "plan", "gold"),
		models.RowOf("id", 2, "user_id", "u1", "plan", "free"),
	}

	v := Build(subscriptions, raw, snapshot)

	assert.GreaterOrEqual(t, len(v.Rows), len(snapshot))
	placeholders := map[string]int{}
	seen := map[string]bool{}
	for _, row := range v.Rows {
		owner := row.Value("user_id").(string)
		seen[owner] = true
		if IsPlaceholder(subscriptions, row) {
			placeholders[owner]++
		}
	}
	for _, acct := range snapshot {
		assert.True(t, seen[acct.Id], "account %s missing from view", acct.Id)
	}
	assert.Equal(t, map[string]int{"u2": 1, "u3": 1}, placeholders)
}

func TestBuild_OrdersByEmailThenPrimaryKeyNullsLast(t *testing.T) {
	snapshot := accounts("u1", "b@x.com", "u2", "a@x.com", "u3", "a@x.com")
	raw := []models.Row{
		models.RowOf("id", json.Number("10"), "user_id", "u1"),
		models.RowOf("id", json.Number("9"), "user_id", "u1"),
		models.RowOf("id", json.Number("3"), "user_id", "u2"),
	}

	v := Build(subscriptions, raw, snapshot)

	var got []any
	for _, row := range v.Rows {
		got = append(got, row.Value("id"))
	}
	// a@x.com group: id 3 then u3's placeholder; b@x.com group: 9 before 10 numerically.
	assert.Equal(t, []any{json.Number("3"), nil, json.Number("9"), json.Number("10")}, got)
	assert.Equal(t, "u3", v.Rows[1].Value("user_id"))
}

func TestBuild_EmailComparisonIsCaseSensitive(t *testing.T) {
	snapshot := accounts("u1", "alice@x.com", "u2", "Bob@x.com")

	v := Build(subscriptions, nil, snapshot)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "u2", v.Rows[0].Value("user_id"), "uppercase sorts before lowercase")
}

func TestBuild_UnknownOwnerSortsFirstWithoutError(t *testing.T) {
	snapshot := accounts("u1", "a@x.com")
	raw := []models.Row{
		models.RowOf("id", 1, "user_id", "u1", "plan", "gold"),
		models.RowOf("id", 2, "user_id", "ghost", "plan", "free"),
	}

	v := Build(subscriptions, raw, snapshot)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "ghost", v.Rows[0].Value("user_id"))
	assert.Equal(t, "u1", v.Rows[1].Value("user_id"))
}

func TestBuild_EmptyEmailSortsFirst(t *testing.T) {
	snapshot := accounts("u1", "a@x.com", "u2", "")

	v := Build(subscriptions, nil, snapshot)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "u2", v.Rows[0].Value("user_id"))
}

func TestBuild_FallbackHeadersWhenNoRows(t *testing.T) {
	v := Build(subscriptions, nil, accounts("u1", "a@x.com"))

	assert.Equal(t, []string{"id", "user_id", "plan", "status"}, v.Headers)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, []string{"id", "user_id", "plan", "status"}, v.Rows[0].Columns())
	assert.Nil(t, v.Rows[0].Value("status"))
}

func TestBuild_DuplicateAccountsYieldOnePlaceholder(t *testing.T) {
	snapshot := accounts("u1", "a@x.com", "u1", "a@x.com")

	v := Build(subscriptions, nil, snapshot)

	assert.Len(t, v.Rows, 1)
}

func TestBuild_PassThroughOrdersByPrimaryKeyDescending(t *testing.T) {
	raw := []models.Row{
		models.RowOf("id", 2, "code", "B"),
		models.RowOf("id", 11, "code", "C"),
		models.RowOf("id", 1, "code", "A"),
	}

	v := Build(referralCodes, raw, accounts("u1", "a@x.com"))

	require.Len(t, v.Rows, 3, "pass-through relations get no placeholders")
	assert.Equal(t, 11, v.Rows[0].Value("id"))
	assert.Equal(t, 2, v.Rows[1].Value("id"))
	assert.Equal(t, 1, v.Rows[2].Value("id"))
	assert.Equal(t, []string{"id", "code"}, v.Headers)
}

func TestBuild_IsIdempotentAndDoesNotMutateInput(t *testing.T) {
	snapshot := accounts("u2", "b@x.com", "u1", "a@x.com")
	raw := []models.Row{
		models.RowOf("id", 7, "user_id", "u2"),
		models.RowOf("id", 4, "user_id", "u1"),
	}

	first := Build(subscriptions, raw, snapshot)
	second := Build(subscriptions, raw, snapshot)

	assert.Equal(t, first, second)
	assert.Equal(t, 7, raw[0].Value("id"), "input order must be untouched")
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, -1, compareKeys(json.Number("9"), json.Number("10")))
	assert.Equal(t, 1, compareKeys(int64(3), 2))
	assert.Equal(t, 0, compareKeys("5", json.Number("5.0")))
	assert.Equal(t, -1, compareKeys("abc", "abd"))
}

func TestCompareKeysRanksNumbersBeforeText(t *testing.T) {
	assert.Equal(t, -1, compareKeys(2, 10))
	assert.Equal(t, -1, compareKeys(10, "10x"))
	assert.Equal(t, 1, compareKeys("10x", 2))
	assert.Equal(t, 1, compareKeys("abc", json.Number("99")))

	keys := []any{"b", 10, "10x", 2, json.Number("1"), "a"}
	slices.SortStableFunc(keys, compareKeys)
	assert.Equal(t, []any{json.Number("1"), 2, 10, "10x", "a", "b"}, keys)
}

func TestBuild_PassThroughWithMixedKeysIsTotallyOrdered(t *testing.T) {
	raw := []models.Row{
		models.RowOf("id", "10x", "code", "C"),
		models.RowOf("id", 2, "code", "A"),
		models.RowOf("id", 10, "code", "B"),
	}

	v := Build(referralCodes, raw, nil)

	// descending: text keys first, then numbers from largest
	require.Len(t, v.Rows, 3)
	assert.Equal(t, "10x", v.Rows[0].Value("id"))
	assert.Equal(t, 10, v.Rows[1].Value("id"))
	assert.Equal(t, 2, v.Rows[2].Value("id"))
}
