/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"baas-admin-go/internal/accounts"
	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"
	"baas-admin-go/internal/view"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the core contract consumed by the presentation layer: it loads
// relation views, remembers the last published one per relation and routes
// edits to the gateway.
type Dashboard struct {
	gateway  store.Gateway
	registry *view.Registry
	cache    *accounts.Cache
	rowLimit int

	accountsLoaded atomic.Bool

	mu     sync.RWMutex
	loaded map[string]view.View
	gens   map[string]uint64
}

func NewDashboard(gateway store.Gateway, registry *view.Registry, cfg models.DashboardConfig) *Dashboard {
	return &Dashboard{
		gateway:  gateway,
		registry: registry,
		cache:    accounts.NewCache(gateway, cfg.AccountPageSize),
		rowLimit: cfg.RowLimit,
		loaded:   make(map[string]view.View),
		gens:     make(map[string]uint64),
	}
}

func (d *Dashboard) Registry() *view.Registry {
	return d.registry
}

func (d *Dashboard) HealthCheck(ctx context.Context) error {
	if _, err := d.gateway.ListAccounts(ctx, 1, 1); err != nil {
		return fmt.Errorf("gateway health check failed: %w", err)
	}
	return nil
}

// Load refreshes the account snapshot and fetches the relation's rows
// concurrently, then builds and publishes the view. A failed row fetch
// returns the error and leaves the previously published view untouched.
// When loads of the same relation overlap only the newest one publishes.
func (d *Dashboard) Load(ctx context.Context, relation string) (view.View, error) {
	spec, err := d.registry.Lookup(relation)
	if err != nil {
		return view.View{}, err
	}
	gen := d.nextGeneration(relation)

	var (
		g        errgroup.Group
		snapshot []models.Account
		rows     []models.Row
	)
	g.Go(func() error {
		snapshot = d.refreshAccounts(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = d.gateway.ListRows(ctx, relation, spec.ListOptions(d.rowLimit))
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to load relation",
			zap.String("relation", relation),
			zap.Error(err))
		return view.View{}, err
	}

	v := view.Build(spec, rows, snapshot)
	d.publish(relation, gen, v)

	zap.L().Info("Relation loaded",
		zap.String("relation", relation),
		zap.Int("raw_rows", len(rows)),
		zap.Int("display_rows", len(v.Rows)),
		zap.Int("accounts", len(snapshot)))
	return v, nil
}

// GetDisplayRows returns the rows of the last published view, nil if never loaded.
func (d *Dashboard) GetDisplayRows(relation string) []models.Row {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded[relation].Rows
}

// GetHeaders returns the headers of the last published view, nil if never loaded.
func (d *Dashboard) GetHeaders(relation string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded[relation].Headers
}

// Accounts returns the account snapshot, refreshing it first when asked to
// or when it was never loaded.
func (d *Dashboard) Accounts(ctx context.Context, refresh bool) []models.Account {
	if refresh || !d.accountsLoaded.Load() {
		return d.refreshAccounts(ctx)
	}
	return d.cache.Snapshot()
}

func (d *Dashboard) LookupAccount(id string) (models.Account, bool) {
	return d.cache.Lookup(id)
}

func (d *Dashboard) refreshAccounts(ctx context.Context) []models.Account {
	snapshot := d.cache.Refresh(ctx)
	d.accountsLoaded.Store(true)
	return snapshot
}

func (d *Dashboard) ensureAccounts(ctx context.Context) {
	if !d.accountsLoaded.Load() {
		d.refreshAccounts(ctx)
	}
}

func (d *Dashboard) nextGeneration(relation string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gens[relation]++
	return d.gens[relation]
}

func (d *Dashboard) publish(relation string, gen uint64, v view.View) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gens[relation] != gen {
		zap.L().Debug("Discarding stale relation view",
			zap.String("relation", relation),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", d.gens[relation]))
		return false
	}
	d.loaded[relation] = v
	return true
}

func (d *Dashboard) loadedRelations() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.loaded))
	for name := range d.loaded {
		names = append(names, name)
	}
	return names
}

// refetch reloads a relation after a successful mutation. Failures are
// logged only: the mutation itself already succeeded.
func (d *Dashboard) refetch(ctx context.Context, relation string) {
	if _, err := d.Load(ctx, relation); err != nil {
		zap.L().Warn("Refetch after mutation failed",
			zap.String("relation", relation),
			zap.Error(err))
	}
}

// refetchAfterAccountChange refreshes the snapshot once and reloads every
// relation that has been shown, since account changes can cascade to rows.
func (d *Dashboard) refetchAfterAccountChange(ctx context.Context) {
	snapshot := d.refreshAccounts(ctx)

	for _, relation := range d.loadedRelations() {
		spec, err := d.registry.Lookup(relation)
		if err != nil {
			continue
		}
		gen := d.nextGeneration(relation)
		rows, err := d.gateway.ListRows(ctx, relation, spec.ListOptions(d.rowLimit))
		if err != nil {
			zap.L().Warn("Refetch after account change failed",
				zap.String("relation", relation),
				zap.Error(err))
			continue
		}
		d.publish(relation, gen, view.Build(spec, rows, snapshot))
	}
}
