package drafts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jbeaudin/maplewood/internal/cache"
)

func newTestStore(t *testing.T, now *time.Time) Store {
	t.Helper()

	clock := func() time.Time { return *now }
	backing := cache.NewMemoryStore().WithClock(clock)
	store, err := NewStore(backing, WithClock(clock))
	require.NoError(t, err)
	return store
}

func TestDraftRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	payload := json.RawMessage(`{"notes":"can't wait"}`)
	require.NoError(t, store.Set(ctx, Draft{PartyID: "party-1", Payload: payload}))

	draft, ok, err := store.Get(ctx, "party-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "party-1", draft.PartyID)
	require.Equal(t, now, draft.SavedAt)
	require.JSONEq(t, string(payload), string(draft.Payload))
}

func TestDraftExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Draft{PartyID: "party-1", Payload: json.RawMessage(`{}`)}))

	now = now.Add(DefaultTTL + time.Minute)
	_, ok, err := store.Get(ctx, "party-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDraftClear(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Draft{PartyID: "party-1", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, store.Clear(ctx, "party-1"))

	_, ok, err := store.Get(ctx, "party-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDraftRequiresPartyID(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)

	require.Error(t, store.Set(context.Background(), Draft{}))
}
