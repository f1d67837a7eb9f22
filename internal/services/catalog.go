package service

import (
	"context"
	"sync"

	"github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/metrics"
	"github.com/bulkmart/catalog-platform/internal/models"
	repository "github.com/bulkmart/catalog-platform/internal/repositories"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 12

	// CategoryAll disables category filtering.
	CategoryAll = "all"
)

// StoreProvider resolves which backing store a call should use. The
// connectivity monitor implements it; reads degrade to the fallback snapshot
// while the remote store is unreachable, writes fail instead.
type StoreProvider interface {
	Reader(ctx context.Context) repository.ProductReader
	Writer(ctx context.Context) (repository.ProductStore, error)
	Provider() string
}

// QueryState drives what the session requests next. Changing category or
// search invalidates every previously fetched page.
type QueryState struct {
	Category    string
	SearchQuery string
	Page        int
}

// CatalogSession accumulates paginated catalog results for one consumer
// (infinite-scroll style). Pages after the first append records de-duplicated
// by id, guarding against offset shifts from concurrent inserts. Each load is
// tagged with the QueryState generation that produced it; results arriving
// after that state was superseded are discarded silently.
//
// A session is private to its consumer but safe for concurrent use.
type CatalogSession struct {
	provider StoreProvider
	pageSize int

	mu         sync.Mutex
	state      QueryState
	generation uint64
	loading    bool
	records    []*models.Product
	seen       map[uuid.UUID]struct{}
	totalCount int
	hasMore    bool
	err        error
}

func NewCatalogSession(provider StoreProvider, pageSize int) *CatalogSession {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	return &CatalogSession{
		provider: provider,
		pageSize: pageSize,
		state:    QueryState{Category: CategoryAll, Page: 1},
		seen:     make(map[uuid.UUID]struct{}),
		hasMore:  true,
	}
}

// Load fetches the page the current QueryState points at and merges it into
// the session. At most one query is in flight; a second Load while one is
// pending is a no-op. On failure the accumulated records stay untouched, the
// error is recorded and hasMore drops to false until Reload.
func (s *CatalogSession) Load(ctx context.Context) error {
	s.mu.Lock()

	if s.loading {
		s.mu.Unlock()
		return nil
	}

	snapshot := s.state
	generation := s.generation
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	filter := models.ProductFilter{
		Category:     snapshot.Category,
		NameContains: snapshot.SearchQuery,
	}

	reader := s.provider.Reader(ctx)
	providerName := s.provider.Provider()

	rows, total, err := reader.ListProducts(ctx, filter, snapshot.Page, s.pageSize)

	metrics.ObserveCatalogQuery(providerName, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if generation != s.generation {
		// the QueryState that produced this request was superseded; drop the
		// response without touching session state
		return nil
	}

	if err != nil {
		s.err = errors.DatabaseError("Failed to load products").WithError(err)
		s.hasMore = false

		return s.err
	}

	if snapshot.Page == 1 {
		s.records = nil
		s.seen = make(map[uuid.UUID]struct{})
	}

	for _, record := range rows {
		if _, dup := s.seen[record.ID]; dup {
			continue
		}

		s.seen[record.ID] = struct{}{}
		s.records = append(s.records, record)
	}

	if total >= 0 {
		s.totalCount = total
	}

	s.hasMore = hasMoreFrom(total, snapshot.Page, s.pageSize, len(rows))

	return nil
}

// hasMoreFrom decides whether a further page exists after fetching one. With a
// true total from the store the count is exact; a negative total means the
// store could not report one, and a full page is the only signal left.
func hasMoreFrom(total, page, pageSize, fetched int) bool {
	if total < 0 {
		// weak signal: a full page suggests more records
		return fetched == pageSize
	}

	// strong signal: the store reported a true total
	return total-((page-1)*pageSize+fetched) > 0
}

// SetCategory filters by category ("all" disables the filter), resetting the
// page to 1 and clearing accumulated results.
func (s *CatalogSession) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" {
		category = CategoryAll
	}

	if s.state.Category == category {
		return
	}

	s.state.Category = category
	s.resetLocked()
}

// SetSearchQuery filters by case-insensitive name substring, with the same
// reset behavior as a category change.
func (s *CatalogSession) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.SearchQuery == query {
		return
	}

	s.state.SearchQuery = query
	s.resetLocked()
}

// AdvancePage requests the next page. It reports false once the session knows
// there is nothing further to fetch, or after an error until Reload.
func (s *CatalogSession) AdvancePage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasMore || s.err != nil {
		return false
	}

	s.state.Page++

	return true
}

// SetPage jumps to an explicit page. Page 1 clears the accumulation so the
// next load replaces the list.
func (s *CatalogSession) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page < 1 {
		page = 1
	}

	if page == s.state.Page {
		return
	}

	if page == 1 {
		s.resetLocked()
		return
	}

	s.state.Page = page
}

// Reload re-issues the current query from page 1, discarding cached results.
func (s *CatalogSession) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
}

// resetLocked invalidates prior pages: back to page 1, accumulation cleared,
// in-flight responses orphaned by bumping the generation.
func (s *CatalogSession) resetLocked() {
	s.state.Page = 1
	s.records = nil
	s.seen = make(map[uuid.UUID]struct{})
	s.totalCount = 0
	s.hasMore = true
	s.err = nil
	s.generation++
}

// Records returns the accumulated result list in fetch order.
func (s *CatalogSession) Records() []*models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*models.Product, len(s.records))
	copy(records, s.records)

	return records
}

func (s *CatalogSession) State() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *CatalogSession) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totalCount
}

func (s *CatalogSession) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasMore
}

func (s *CatalogSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *CatalogSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
