// Package drafts caches in-progress RSVP form state so a guest who closes the
// tab mid-form can resume. Snapshots are keyed by party and expire after a
// TTL; they are a convenience, not a guarantee, so callers swallow store
// failures instead of surfacing them to guests.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jbeaudin/maplewood/internal/cache"
)

// DefaultTTL is how long a snapshot stays restorable.
const DefaultTTL = 24 * time.Hour

// Draft is a timestamped snapshot of the form state for one party. The
// payload is the client's own form state and is stored opaquely; the server
// only enforces the freshness and already-submitted rules around it.
type Draft struct {
	PartyID string          `json:"party_id"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// Store persists draft snapshots keyed by party ID.
type Store interface {
	Get(ctx context.Context, partyID string) (*Draft, bool, error)
	Set(ctx context.Context, draft Draft) error
	Clear(ctx context.Context, partyID string) error
}

type cacheStore struct {
	cache cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// Option customises the draft store.
type Option func(*cacheStore)

// WithTTL overrides the snapshot lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *cacheStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock injects a custom clock, primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(s *cacheStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewStore builds a draft store on top of the shared cache (Redis in
// production, in-memory in tests).
func NewStore(backing cache.Store, opts ...Option) (Store, error) {
	if backing == nil {
		return nil, errors.New("drafts: cache store is required")
	}

	store := &cacheStore{
		cache: backing,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func draftKey(partyID string) string {
	return "draft:" + partyID
}

func (s *cacheStore) Get(ctx context.Context, partyID string) (*Draft, bool, error) {
	raw, ok, err := s.cache.Get(ctx, draftKey(partyID))
	if err != nil || !ok {
		return nil, false, err
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		// A corrupt snapshot is dropped, not surfaced.
		_ = s.cache.Delete(ctx, draftKey(partyID))
		return nil, false, nil
	}

	if s.now().Sub(draft.SavedAt) > s.ttl {
		_ = s.cache.Delete(ctx, draftKey(partyID))
		return nil, false, nil
	}

	return &draft, true, nil
}

func (s *cacheStore) Set(ctx context.Context, draft Draft) error {
	if draft.PartyID == "" {
		return errors.New("drafts: party id is required")
	}
	if draft.SavedAt.IsZero() {
		draft.SavedAt = s.now()
	}

	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, draftKey(draft.PartyID), raw, s.ttl)
}

func (s *cacheStore) Clear(ctx context.Context, partyID string) error {
	return s.cache.Delete(ctx, draftKey(partyID))
}
