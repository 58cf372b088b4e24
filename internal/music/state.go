package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	internalredis "github.com/hxnx/synesth/internal/redis"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSuperseded is returned when a clear happened while a write was in flight.
var ErrSuperseded = errors.New("playback state was cleared in the meantime")

const sessionKeyPrefix = "synesth:session:"

var (
	playerStateKey    = sessionKeyPrefix + "player_state"
	nowPlayingKey     = sessionKeyPrefix + "now_playing"
	historyKey        = sessionKeyPrefix + "played_songs"
	epochKey          = sessionKeyPrefix + "epoch"
	widgetPositionKey = sessionKeyPrefix + "widget_position"
)

// StateStore holds the single PlaybackState slot and its NowPlaying shadow.
// Writers are not ordered against each other: the last Set wins.
type StateStore struct {
	client *redislib.Client
	now    func() time.Time
}

func NewStateStore(client *redislib.Client) *StateStore {
	return &StateStore{client: client, now: time.Now}
}

func NewStateStoreFromDefault() *StateStore {
	return NewStateStore(internalredis.Client())
}

func (s *StateStore) ensureClient() error {
	if s.client != nil {
		return nil
	}

	s.client = internalredis.Client()
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	return nil
}

// Get returns nil when nothing is stored.
func (s *StateStore) Get(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	ok, err := s.getJSON(ctx, playerStateKey, &state)
	if err != nil || !ok {
		return nil, err
	}
	return &state, nil
}

func (s *StateStore) NowPlaying(ctx context.Context) (*NowPlaying, error) {
	var np NowPlaying
	ok, err := s.getJSON(ctx, nowPlayingKey, &np)
	if err != nil || !ok {
		return nil, err
	}
	return &np, nil
}

// Set replaces the state and restamps NowPlaying atomically.
func (s *StateStore) Set(ctx context.Context, state *PlaybackState, surfaceID string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	statePayload, npPayload, err := s.encode(state, surfaceID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, playerStateKey, statePayload, 0)
		pipe.Set(ctx, nowPlayingKey, npPayload, 0)
		return nil
	})
	return err
}

// SetIfCurrent is Set guarded by the clear epoch read at pipeline start.
func (s *StateStore) SetIfCurrent(ctx context.Context, state *PlaybackState, surfaceID string, epoch int64) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	statePayload, npPayload, err := s.encode(state, surfaceID)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := tx.Get(ctx, epochKey).Int64()
		if err != nil && !errors.Is(err, redislib.Nil) {
			return err
		}
		if current != epoch {
			return ErrSuperseded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, playerStateKey, statePayload, 0)
			pipe.Set(ctx, nowPlayingKey, npPayload, 0)
			return nil
		})
		return err
	}, epochKey)

	if errors.Is(err, redislib.TxFailedErr) {
		return ErrSuperseded
	}
	return err
}

// Clear removes state and NowPlaying together and advances the epoch.
func (s *StateStore) Clear(ctx context.Context) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, playerStateKey, nowPlayingKey)
		pipe.Incr(ctx, epochKey)
		return nil
	})
	return err
}

// Epoch counts clears and resets. It starts at zero.
func (s *StateStore) Epoch(ctx context.Context) (int64, error) {
	if err := s.ensureClient(); err != nil {
		return 0, err
	}

	epoch, err := s.client.Get(ctx, epochKey).Int64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return epoch, err
}

// Reset wipes the whole session area: state, NowPlaying, history and
// widget position.
func (s *StateStore) Reset(ctx context.Context) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, playerStateKey, nowPlayingKey, historyKey, widgetPositionKey)
		pipe.Incr(ctx, epochKey)
		return nil
	})
	return err
}

func (s *StateStore) GetWidgetPosition(ctx context.Context) (*WidgetPosition, error) {
	var pos WidgetPosition
	ok, err := s.getJSON(ctx, widgetPositionKey, &pos)
	if err != nil || !ok {
		return nil, err
	}
	return &pos, nil
}

func (s *StateStore) SaveWidgetPosition(ctx context.Context, pos WidgetPosition) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	payload, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, widgetPositionKey, payload, 0).Err()
}

func (s *StateStore) encode(state *PlaybackState, surfaceID string) ([]byte, []byte, error) {
	if err := state.Validate(); err != nil {
		return nil, nil, err
	}

	statePayload, err := json.Marshal(state)
	if err != nil {
		return nil, nil, err
	}

	npPayload, err := json.Marshal(NowPlaying{
		Mood:      state.Mood,
		Emoji:     state.Emoji,
		Song:      state.Song,
		VideoID:   state.VideoID,
		SurfaceID: surfaceID,
		Timestamp: s.now().UnixMilli(),
	})
	if err != nil {
		return nil, nil, err
	}

	return statePayload, npPayload, nil
}

func (s *StateStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	if err := s.ensureClient(); err != nil {
		return false, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
