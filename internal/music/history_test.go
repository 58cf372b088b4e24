package music

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_KeepsLast50(t *testing.T) {
	client, _ := newTestRedis(t)
	h := NewHistoryStore(client)
	ctx := context.Background()

	for i := 1; i <= 51; i++ {
		require.NoError(t, h.Record(ctx, Song{Title: fmt.Sprintf("T%d", i), Artist: fmt.Sprintf("A%d", i)}))
	}

	all, err := h.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, MaxHistory)
	assert.Equal(t, "T2", all[0].Title, "oldest entry is dropped")
	assert.Equal(t, "T51", all[len(all)-1].Title)
}

func TestHistoryStore_AvoidListIsLastTenOldestFirst(t *testing.T) {
	client, _ := newTestRedis(t)
	h := NewHistoryStore(client)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		require.NoError(t, h.Record(ctx, Song{Title: fmt.Sprintf("T%d", i), Artist: fmt.Sprintf("A%d", i)}))
	}

	avoid, err := h.RecentAvoidList(ctx, 0)
	require.NoError(t, err)
	require.Len(t, avoid, 10)
	assert.Equal(t, "A6 - T6", avoid[0])
	assert.Equal(t, "A15 - T15", avoid[9])
}

func TestHistoryStore_NoDedupAndVerbatim(t *testing.T) {
	client, _ := newTestRedis(t)
	h := NewHistoryStore(client)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	ctx := context.Background()

	song := Song{Title: "  Autumn Leaves", Artist: "bill evans"}
	require.NoError(t, h.Record(ctx, song))
	require.NoError(t, h.Record(ctx, song))

	all, err := h.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, fixed.UnixMilli(), all[0].Timestamp)

	avoid, err := h.RecentAvoidList(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"bill evans -   Autumn Leaves", "bill evans -   Autumn Leaves"}, avoid)
}

func TestHistoryStore_Empty(t *testing.T) {
	client, _ := newTestRedis(t)
	h := NewHistoryStore(client)

	avoid, err := h.RecentAvoidList(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, avoid)
}
