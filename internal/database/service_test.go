package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T, dummies bool) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), models.DatabaseConfig{
		Path:             ":memory:",
		MaxOpenConns:     1,
		MaxIdleConns:     1,
		PingTimeout:      time.Second,
		CreateDummyUsers: dummies,
	})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func mustCreateAccount(t *testing.T, svc *Service, email string) string {
	t.Helper()
	id, err := svc.insertAccount(context.Background(), email, "secret123", map[string]any{"source": "test"})
	require.NoError(t, err)
	return id
}

func TestNewServiceValidatesConfig(t *testing.T) {
	ctx := context.Background()
	_, err := NewService(ctx, models.DatabaseConfig{})
	assert.ErrorContains(t, err, "path")

	_, err = NewService(ctx, models.DatabaseConfig{Path: ":memory:"})
	assert.ErrorContains(t, err, "max open connections")

	_, err = NewService(ctx, models.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1})
	assert.ErrorContains(t, err, "ping timeout")
}

func TestDummyDataSeeded(t *testing.T) {
	svc := setupTestService(t, true)
	ctx := context.Background()

	accounts, err := svc.ListAccounts(ctx, 1, 100)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	rows, err := svc.ListRows(ctx, "subscriptions", store.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// A second init must not duplicate the seed.
	require.NoError(t, svc.initSchema(ctx, true))
	accounts, err = svc.ListAccounts(ctx, 1, 100)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

func TestListAccountsPaging(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		mustCreateAccount(t, svc, email)
	}

	page1, err := svc.ListAccounts(ctx, 1, 2)
	require.NoError(t, err)
	page2, err := svc.ListAccounts(ctx, 2, 2)
	require.NoError(t, err)
	page3, err := svc.ListAccounts(ctx, 3, 2)
	require.NoError(t, err)

	assert.Len(t, page1, 2)
	assert.Len(t, page2, 1)
	assert.Empty(t, page3)
	assert.Equal(t, map[string]any{"source": "test"}, page1[0].Metadata)

	_, err = svc.ListAccounts(ctx, 0, 2)
	assert.Equal(t, store.KindValidation, store.KindOf(err))
}

func TestAccountLifecycle(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, "a@x.com", "secret123", nil))
	err := svc.CreateAccount(ctx, "a@x.com", "other", nil)
	assert.Equal(t, store.KindConflict, store.KindOf(err), "email is unique")

	accounts, err := svc.ListAccounts(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	id := accounts[0].Id

	require.NoError(t, svc.UpdateAccountMetadata(ctx, id, map[string]any{"tier": "pro"}))
	accounts, err = svc.ListAccounts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tier": "pro"}, accounts[0].Metadata)
	assert.Nil(t, accounts[0].LastSignInAt)

	require.NoError(t, svc.DeleteAccount(ctx, id))
	err = svc.DeleteAccount(ctx, id)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	err = svc.UpdateAccountMetadata(ctx, id, map[string]any{})
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestRowCrud(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()
	uid := mustCreateAccount(t, svc, "a@x.com")

	require.NoError(t, svc.InsertRow(ctx, "subscriptions", map[string]any{
		"user_id":  uid,
		"plan":     "gold",
		"status":   "active",
		"metadata": map[string]any{"seats": 3},
	}))
	require.NoError(t, svc.InsertRow(ctx, "subscriptions", map[string]any{
		"user_id": uid,
		"plan":    "free",
		"status":  "expired",
	}))

	rows, err := svc.ListRows(ctx, "subscriptions", store.ListOptions{OrderBy: "id", Descending: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "user_id", "plan", "status", "started_at", "expires_at", "metadata"}, rows[0].Columns())
	assert.Equal(t, int64(2), rows[0].Value("id"))
	assert.Equal(t, `{"seats":3}`, rows[1].Value("metadata"))
	assert.Nil(t, rows[1].Value("expires_at"))

	limited, err := svc.ListRows(ctx, "subscriptions", store.ListOptions{OrderBy: "id", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(1), limited[0].Value("id"))

	require.NoError(t, svc.UpdateRow(ctx, "subscriptions", store.RowKey{Value: json.Number("1")}, map[string]any{"plan": "silver"}))
	rows, err = svc.ListRows(ctx, "subscriptions", store.ListOptions{OrderBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, "silver", rows[0].Value("plan"))

	require.NoError(t, svc.DeleteRow(ctx, "subscriptions", store.RowKey{Column: "id", Value: "2"}))
	err = svc.DeleteRow(ctx, "subscriptions", store.RowKey{Value: "2"})
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
}

func TestRowErrors(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()

	_, err := svc.ListRows(ctx, "missing", store.ListOptions{})
	assert.ErrorIs(t, err, store.ErrRelationNotFound)

	_, err = svc.ListRows(ctx, "accounts", store.ListOptions{})
	assert.ErrorIs(t, err, store.ErrRelationNotFound, "identity table is not a relation")

	_, err = svc.ListRows(ctx, "subscriptions; DROP TABLE accounts", store.ListOptions{})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	_, err = svc.ListRows(ctx, "subscriptions", store.ListOptions{OrderBy: "id desc"})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	err = svc.InsertRow(ctx, "subscriptions", map[string]any{"user_id": "ghost", "plan": "gold", "status": "active"})
	assert.Equal(t, store.KindValidation, store.KindOf(err))
	assert.Equal(t, "referenced account does not exist", store.Message(err))

	err = svc.InsertRow(ctx, "subscriptions", map[string]any{"nope": 1})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	err = svc.InsertRow(ctx, "referral_codes", map[string]any{})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	err = svc.UpdateRow(ctx, "referral_codes", store.RowKey{}, map[string]any{"code": "X"})
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	err = svc.DeleteRow(ctx, "referral_codes", store.RowKey{Column: "code = code --", Value: "X"})
	assert.Equal(t, store.KindValidation, store.KindOf(err))
}

func TestRowsAddressedByNonIdKey(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()
	key := store.RowKey{Column: "code", Value: "SAVE10"}

	require.NoError(t, svc.InsertRow(ctx, "referral_codes", map[string]any{"code": "SAVE10", "discount_percent": 10}))
	require.NoError(t, svc.InsertRow(ctx, "referral_codes", map[string]any{"code": "SAVE20", "discount_percent": 20}))

	require.NoError(t, svc.UpdateRow(ctx, "referral_codes", key, map[string]any{"discount_percent": 15}))
	rows, err := svc.ListRows(ctx, "referral_codes", store.ListOptions{OrderBy: "code"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(15), rows[0].Value("discount_percent"))
	assert.Equal(t, int64(20), rows[1].Value("discount_percent"))

	require.NoError(t, svc.DeleteRow(ctx, "referral_codes", key))
	err = svc.DeleteRow(ctx, "referral_codes", key)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))

	rows, err = svc.ListRows(ctx, "referral_codes", store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SAVE20", rows[0].Value("code"))
}

func TestUniqueConstraintIsConflict(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.InsertRow(ctx, "referral_codes", map[string]any{"code": "SPRING", "discount_percent": 10}))
	err := svc.InsertRow(ctx, "referral_codes", map[string]any{"code": "SPRING"})

	assert.Equal(t, store.KindConflict, store.KindOf(err))
}

func TestDeleteAccountCascadesRows(t *testing.T) {
	svc := setupTestService(t, false)
	ctx := context.Background()
	uid := mustCreateAccount(t, svc, "a@x.com")
	require.NoError(t, svc.InsertRow(ctx, "referral_usages", map[string]any{"user_id": uid, "referral_code": "SPRING"}))

	require.NoError(t, svc.DeleteAccount(ctx, uid))

	rows, err := svc.ListRows(ctx, "referral_usages", store.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAccountSecretIsStoredHashed(t *testing.T) {
	svc := setupTestService(t, false)
	id := mustCreateAccount(t, svc, "a@x.com")

	var hash, salt []byte
	err := svc.db.QueryRow(`SELECT secret_hash, secret_salt FROM accounts WHERE id = ?`, id).Scan(&hash, &salt)
	require.NoError(t, err)

	assert.NotEqual(t, []byte("secret123"), hash)
	assert.Equal(t, hashSecret("secret123", salt), hash)
	assert.NotEqual(t, hashSecret("wrong", salt), hash)
}
