package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"baas-admin-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedLister struct {
	pages    map[int][]models.Account
	failAt   int
	requests []int
}

func (l *pagedLister) ListAccounts(_ context.Context, page, _ int) ([]models.Account, error) {
	l.requests = append(l.requests, page)
	if page == l.failAt {
		return nil, errors.New("connection reset")
	}
	return l.pages[page], nil
}

func makeAccounts(prefix string, n int) []models.Account {
	out := make([]models.Account, n)
	for i := range out {
		out[i] = models.Account{Id: fmt.Sprintf("%s-%d", prefix, i), Email: fmt.Sprintf("%s%d@x.com", prefix, i)}
	}
	return out
}

func TestRefresh_StopsOnEmptyPage(t *testing.T) {
	lister := &pagedLister{pages: map[int][]models.Account{1: makeAccounts("p1", 100)}}
	cache := NewCache(lister, 100)

	got := cache.Refresh(context.Background())

	assert.Len(t, got, 100)
	assert.Equal(t, []int{1, 2}, lister.requests)
	assert.Equal(t, 100, cache.Len())
}

func TestRefresh_StopsOnShortPage(t *testing.T) {
	lister := &pagedLister{pages: map[int][]models.Account{
		1: makeAccounts("p1", 100),
		2: makeAccounts("p2", 100),
		3: makeAccounts("p3", 7),
	}}
	cache := NewCache(lister, 100)

	got := cache.Refresh(context.Background())

	assert.Len(t, got, 207)
	assert.Equal(t, []int{1, 2, 3}, lister.requests)
	assert.Equal(t, "p1-0", got[0].Id)
	assert.Equal(t, "p3-6", got[206].Id)
}

func TestRefresh_KeepsPartialSnapshotOnPageError(t *testing.T) {
	lister := &pagedLister{pages: map[int][]models.Account{1: makeAccounts("p1", 100)}, failAt: 2}
	cache := NewCache(lister, 100)

	got := cache.Refresh(context.Background())

	assert.Len(t, got, 100)
	assert.Equal(t, []int{1, 2}, lister.requests)
	_, ok := cache.Lookup("p1-42")
	assert.True(t, ok)
}

func TestRefresh_ReplacesWholeSnapshot(t *testing.T) {
	lister := &pagedLister{pages: map[int][]models.Account{1: makeAccounts("old", 3)}}
	cache := NewCache(lister, 100)
	cache.Refresh(context.Background())

	lister.pages[1] = makeAccounts("new", 2)
	cache.Refresh(context.Background())

	require.Equal(t, 2, cache.Len())
	_, ok := cache.Lookup("old-0")
	assert.False(t, ok)
	acct, ok := cache.FindByEmail("new1@x.com")
	assert.True(t, ok)
	assert.Equal(t, "new-1", acct.Id)
}

func TestRefresh_FirstPageErrorYieldsEmptySnapshot(t *testing.T) {
	lister := &pagedLister{failAt: 1}
	cache := NewCache(lister, 0)

	assert.Empty(t, cache.Refresh(context.Background()))
	assert.Equal(t, DefaultPageSize, cache.pageSize)
}

func TestSnapshotIsACopy(t *testing.T) {
	lister := &pagedLister{pages: map[int][]models.Account{1: makeAccounts("p", 2)}}
	cache := NewCache(lister, 100)
	cache.Refresh(context.Background())

	snap := cache.Snapshot()
	snap[0].Email = "changed"

	acct, _ := cache.Lookup("p-0")
	assert.Equal(t, "p0@x.com", acct.Email)
	assert.Equal(t, "p0@x.com", cache.Snapshot()[0].Email)
}
