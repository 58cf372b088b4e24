package music

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	internalredis "github.com/hxnx/synesth/internal/redis"
	redislib "github.com/redis/go-redis/v9"
)

const (
	// MaxHistory bounds the play history; older entries are trimmed away.
	MaxHistory = 50
	// AvoidListSize is how many recent plays are named in next-song prompts.
	AvoidListSize = 10
)

// HistoryStore is the append-only, keep-last-50 list of played songs.
type HistoryStore struct {
	client *redislib.Client
	now    func() time.Time
}

func NewHistoryStore(client *redislib.Client) *HistoryStore {
	return &HistoryStore{client: client, now: time.Now}
}

func NewHistoryStoreFromDefault() *HistoryStore {
	return NewHistoryStore(internalredis.Client())
}

func (h *HistoryStore) ensureClient() error {
	if h.client != nil {
		return nil
	}

	h.client = internalredis.Client()
	if h.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	return nil
}

// Record appends the song and trims to MaxHistory in one transaction.
// No dedup happens here.
func (h *HistoryStore) Record(ctx context.Context, song Song) error {
	if err := h.ensureClient(); err != nil {
		return err
	}

	payload, err := json.Marshal(HistoryEntry{
		Artist:    song.Artist,
		Title:     song.Title,
		Timestamp: h.now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	_, err = h.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.RPush(ctx, historyKey, payload)
		pipe.LTrim(ctx, historyKey, -MaxHistory, -1)
		return nil
	})
	return err
}

// RecentAvoidList returns the last n entries as "artist - title", oldest
// first. n <= 0 uses AvoidListSize.
func (h *HistoryStore) RecentAvoidList(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = AvoidListSize
	}

	entries, err := h.lrange(ctx, int64(-n), -1)
	if err != nil {
		return nil, err
	}

	avoid := make([]string, 0, len(entries))
	for _, e := range entries {
		avoid = append(avoid, e.AvoidString())
	}
	return avoid, nil
}

func (h *HistoryStore) All(ctx context.Context) ([]HistoryEntry, error) {
	return h.lrange(ctx, 0, -1)
}

func (h *HistoryStore) lrange(ctx context.Context, start, stop int64) ([]HistoryEntry, error) {
	if err := h.ensureClient(); err != nil {
		return nil, err
	}

	raw, err := h.client.LRange(ctx, historyKey, start, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
