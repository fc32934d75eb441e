package api

import (
	"context"
	"maps"
	"sync"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"
	"baas-admin-go/internal/view"
)

type call struct {
	op       string
	relation string
	key      any
	fields   map[string]any
}

// fakeGateway is an in-memory store.Gateway recording every call it receives.
type fakeGateway struct {
	mu       sync.Mutex
	accounts []models.Account
	rows     map[string][]models.Row
	calls    []call

	listErr    error
	mutateErr  error
	accountErr error

	// beforeList, when set, runs at the start of ListRows with the call number.
	beforeList func(n int)
	listCount  int
}

var _ store.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{rows: make(map[string][]models.Row)}
}

func (f *fakeGateway) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeGateway) callsFor(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGateway) ListRows(_ context.Context, relation string, _ store.ListOptions) ([]models.Row, error) {
	f.mu.Lock()
	f.listCount++
	n := f.listCount
	hook := f.beforeList
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}

	f.record(call{op: "list", relation: relation})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Row, len(f.rows[relation]))
	for i, r := range f.rows[relation] {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeGateway) InsertRow(_ context.Context, relation string, fields map[string]any) error {
	f.record(call{op: "insert", relation: relation, fields: maps.Clone(fields)})
	return f.mutateErr
}

func (f *fakeGateway) UpdateRow(_ context.Context, relation string, key store.RowKey, fields map[string]any) error {
	f.record(call{op: "update", relation: relation, key: key, fields: maps.Clone(fields)})
	return f.mutateErr
}

func (f *fakeGateway) DeleteRow(_ context.Context, relation string, key store.RowKey) error {
	f.record(call{op: "delete", relation: relation, key: key})
	return f.mutateErr
}

func (f *fakeGateway) ListAccounts(_ context.Context, page, pageSize int) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	start := (page - 1) * pageSize
	if start >= len(f.accounts) {
		return nil, nil
	}
	end := min(start+pageSize, len(f.accounts))
	return append([]models.Account(nil), f.accounts[start:end]...), nil
}

func (f *fakeGateway) CreateAccount(_ context.Context, email, _ string, metadata map[string]any) error {
	f.record(call{op: "create account", key: email, fields: metadata})
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, models.Account{Id: "new-" + email, Email: email, Metadata: metadata})
	return nil
}

func (f *fakeGateway) UpdateAccountMetadata(_ context.Context, id string, metadata map[string]any) error {
	f.record(call{op: "update account", key: id, fields: metadata})
	return f.mutateErr
}

func (f *fakeGateway) DeleteAccount(_ context.Context, id string) error {
	f.record(call{op: "delete account", key: id})
	return f.mutateErr
}

func (f *fakeGateway) Close() {}

func testRegistry() *view.Registry {
	registry, err := view.NewRegistry([]view.RelationSpec{
		{
			Name:             "subscriptions",
			Denormalize:      true,
			FallbackHeaders:  []string{"id", "user_id", "plan", "status", "metadata"},
			JSONFields:       []string{"metadata"},
			EnumFields:       map[string][]string{"plan": {"free", "pro"}, "status": {"active", "canceled"}},
			ForeignKeyFields: []string{"user_id"},
			RequiredFields:   []string{"user_id", "plan"},
		},
		{
			Name:            "referral_codes",
			FallbackHeaders: []string{"id", "code"},
			RequiredFields:  []string{"code"},
		},
		{
			Name:            "coupons",
			PrimaryKey:      "code",
			FallbackHeaders: []string{"code", "discount_percent"},
			RequiredFields:  []string{"code"},
		},
	})
	if err != nil {
		panic(err)
	}
	return registry
}

func newTestDashboard(gw *fakeGateway) *Dashboard {
	return NewDashboard(gw, testRegistry(), models.DashboardConfig{AccountPageSize: 2, RowLimit: 100})
}
