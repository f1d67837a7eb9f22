package service

import (
	"context"
	"sync"
	"time"

	"github.com/bulkmart/catalog-platform/internal/models"
	"github.com/google/uuid"
)

const sessionIdleTTL = 30 * time.Minute

// CatalogBrowser hands out CatalogSessions keyed by an opaque session id, so
// storefront clients scroll an accumulating listing across requests. Sessions
// idle past the TTL are dropped on the next access; an unknown or empty id
// starts a fresh session.
type CatalogBrowser struct {
	provider StoreProvider
	pageSize int
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*browserEntry
}

type browserEntry struct {
	session  *CatalogSession
	lastSeen time.Time
}

func NewCatalogBrowser(provider StoreProvider, pageSize int, ttl time.Duration) *CatalogBrowser {
	if ttl <= 0 {
		ttl = sessionIdleTTL
	}

	return &CatalogBrowser{
		provider: provider,
		pageSize: pageSize,
		ttl:      ttl,
		sessions: make(map[string]*browserEntry),
	}
}

// Browse applies the request's filters to the caller's session, optionally
// advances one page, loads, and returns the accumulated records. Filter
// changes reset the session to page 1; the session id in the response must be
// echoed back to continue scrolling.
func (b *CatalogBrowser) Browse(ctx context.Context, req *models.BrowseRequest) (*models.BrowseResponse, error) {
	sessionID, session := b.sessionFor(req.SessionID)

	session.SetCategory(req.Category)
	session.SetSearchQuery(req.SearchQuery)

	if req.Reload {
		session.Reload()
	}

	if req.NextPage {
		session.AdvancePage()
	}

	if err := session.Load(ctx); err != nil {
		return nil, err
	}

	state := session.State()

	return &models.BrowseResponse{
		SessionID: sessionID,
		Data:      session.Records(),
		Total:     session.TotalCount(),
		Page:      state.Page,
		HasMore:   session.HasMore(),
	}, nil
}

// sessionFor returns the live session for id, evicting idle entries along the
// way. Unknown ids get a fresh session under a new id.
func (b *CatalogBrowser) sessionFor(id string) (string, *CatalogSession) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()

	for key, entry := range b.sessions {
		if now.Sub(entry.lastSeen) > b.ttl {
			delete(b.sessions, key)
		}
	}

	if id != "" {
		if entry, ok := b.sessions[id]; ok {
			entry.lastSeen = now

			return id, entry.session
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	entry := &browserEntry{
		session:  NewCatalogSession(b.provider, b.pageSize),
		lastSeen: now,
	}
	b.sessions[id] = entry

	return id, entry.session
}
