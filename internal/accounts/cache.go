package accounts

import (
	"context"
	"slices"
	"sync"

	"baas-admin-go/internal/models"

	"go.uber.org/zap"
)

// DefaultPageSize is the number of accounts requested per page.
const DefaultPageSize = 100

// Lister is the slice of the gateway the cache needs.
type Lister interface {
	ListAccounts(ctx context.Context, page, pageSize int) ([]models.Account, error)
}

// Cache holds the last complete (or partial) account snapshot.
type Cache struct {
	lister   Lister
	pageSize int

	mu       sync.RWMutex
	snapshot []models.Account
	byId     map[string]models.Account
}

func NewCache(lister Lister, pageSize int) *Cache {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cache{lister: lister, pageSize: pageSize, byId: map[string]models.Account{}}
}

// Refresh fetches every page starting at page 1 until a short or empty page,
// then replaces the snapshot. A failing page ends the loop early; the pages
// gathered so far still become the snapshot and the failure is only logged.
func (c *Cache) Refresh(ctx context.Context) []models.Account {
	var all []models.Account
	requests := 0

	for page := 1; ; page++ {
		requests++
		batch, err := c.lister.ListAccounts(ctx, page, c.pageSize)
		if err != nil {
			zap.L().Warn("Account page failed, keeping partial snapshot",
				zap.Int("page", page),
				zap.Int("accounts_kept", len(all)),
				zap.Error(err))
			break
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}

	byId := make(map[string]models.Account, len(all))
	for _, acct := range all {
		byId[acct.Id] = acct
	}

	c.mu.Lock()
	c.snapshot = all
	c.byId = byId
	c.mu.Unlock()

	zap.L().Debug("Account snapshot refreshed",
		zap.Int("accounts", len(all)),
		zap.Int("requests", requests))

	return slices.Clone(all)
}

// Snapshot returns a copy of the current snapshot.
func (c *Cache) Snapshot() []models.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.snapshot)
}

func (c *Cache) Lookup(id string) (models.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	acct, ok := c.byId[id]
	return acct, ok
}

// FindByEmail returns the first account with the given email.
func (c *Cache) FindByEmail(email string) (models.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, acct := range c.snapshot {
		if acct.Email == email {
			return acct, true
		}
	}
	return models.Account{}, false
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot)
}
