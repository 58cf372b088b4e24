// Package session is the single coordinator every surface talks to. It runs
// the recommend, resolve, record and persist pipeline and passes storage
// requests through.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
)

type Recommender interface {
	FromContent(ctx context.Context, text, pageURL string) (mood.Result, error)
	FromMood(ctx context.Context, label string, avoid []string) (mood.Result, error)
}

type Resolver interface {
	Resolve(ctx context.Context, title, artist string) (string, error)
}

type History interface {
	Record(ctx context.Context, song music.Song) error
	RecentAvoidList(ctx context.Context, n int) ([]string, error)
	All(ctx context.Context) ([]music.HistoryEntry, error)
}

type State interface {
	Get(ctx context.Context) (*music.PlaybackState, error)
	Set(ctx context.Context, state *music.PlaybackState, surfaceID string) error
	SetIfCurrent(ctx context.Context, state *music.PlaybackState, surfaceID string, epoch int64) error
	Clear(ctx context.Context) error
	Epoch(ctx context.Context) (int64, error)
	NowPlaying(ctx context.Context) (*music.NowPlaying, error)
	Reset(ctx context.Context) error
	GetWidgetPosition(ctx context.Context) (*music.WidgetPosition, error)
	SaveWidgetPosition(ctx context.Context, pos music.WidgetPosition) error
}

type Settings interface {
	Get(ctx context.Context) (music.Settings, bool, error)
	Save(ctx context.Context, s music.Settings) error
	EnsureDefaults(ctx context.Context) error
}

type Coordinator struct {
	recommender Recommender
	resolver    Resolver
	history     History
	state       State
	settings    Settings

	metrics *Metrics
	logger  logrus.FieldLogger
}

func NewCoordinator(recommender Recommender, resolver Resolver, history History, state State, settings Settings, logger logrus.FieldLogger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		recommender: recommender,
		resolver:    resolver,
		history:     history,
		state:       state,
		settings:    settings,
		logger:      logger,
	}
}

func (c *Coordinator) WithMetrics(m *Metrics) *Coordinator {
	c.metrics = m
	return c
}

// Dispatch handles one request. Nil pointers in the reply mean "nothing
// stored" and encode as JSON null.
func (c *Coordinator) Dispatch(ctx context.Context, req Request) (reply any, err error) {
	if req == nil {
		return nil, ErrUnknownRequest
	}

	started := time.Now()
	defer func() {
		c.observe(req.Kind(), started, err)
	}()

	switch r := req.(type) {
	case AnalyzeMood:
		return c.analyze(ctx, r)
	case ManualMood:
		return c.manualMood(ctx, r)
	case NextSong:
		return c.nextSong(ctx, r)
	case GetSettings:
		s, _, err := c.settings.Get(ctx)
		return s, err
	case SaveSettings:
		if r.Settings == nil {
			return nil, fmt.Errorf("%w: settings", ErrMissingInput)
		}
		return ack(c.settings.Save(ctx, *r.Settings))
	case GetPlayerState:
		return c.state.Get(ctx)
	case SavePlayerState:
		return ack(c.state.Set(ctx, r.State, r.SurfaceID))
	case ClearPlayerState:
		return ack(c.state.Clear(ctx))
	case GetNowPlaying:
		return c.state.NowPlaying(ctx)
	case GetHistory:
		return c.history.All(ctx)
	case GetWidgetPosition:
		return c.state.GetWidgetPosition(ctx)
	case SaveWidgetPosition:
		if r.Position == nil {
			return nil, fmt.Errorf("%w: position", ErrMissingInput)
		}
		return ack(c.state.SaveWidgetPosition(ctx, *r.Position))
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}

func (c *Coordinator) analyze(ctx context.Context, r AnalyzeMood) (music.Result, error) {
	if strings.TrimSpace(r.Text) == "" {
		return music.Result{}, fmt.Errorf("%w: text", ErrMissingInput)
	}
	return c.play(ctx, r.SurfaceID, func(ctx context.Context) (mood.Result, error) {
		return c.recommender.FromContent(ctx, r.Text, r.URL)
	})
}

func (c *Coordinator) manualMood(ctx context.Context, r ManualMood) (music.Result, error) {
	label := strings.TrimSpace(r.Mood)
	if label == "" {
		return music.Result{}, fmt.Errorf("%w: mood", ErrMissingInput)
	}
	return c.play(ctx, r.SurfaceID, func(ctx context.Context) (mood.Result, error) {
		return c.recommender.FromMood(ctx, label, nil)
	})
}

func (c *Coordinator) nextSong(ctx context.Context, r NextSong) (music.Result, error) {
	label := strings.TrimSpace(r.CurrentMood)
	if label == "" {
		return music.Result{}, fmt.Errorf("%w: currentMood", ErrMissingInput)
	}
	return c.play(ctx, r.SurfaceID, func(ctx context.Context) (mood.Result, error) {
		avoid, err := c.history.RecentAvoidList(ctx, music.AvoidListSize)
		if err != nil {
			return mood.Result{}, fmt.Errorf("load avoid list: %w", err)
		}
		return c.recommender.FromMood(ctx, label, avoid)
	})
}

// play runs recommend, resolve, record, persist in that order. Any failure
// stops the pipeline before the next stage; nothing is retried.
func (c *Coordinator) play(ctx context.Context, surfaceID string, recommend func(context.Context) (mood.Result, error)) (music.Result, error) {
	epoch, err := c.state.Epoch(ctx)
	if err != nil {
		return music.Result{}, fmt.Errorf("read epoch: %w", err)
	}

	rec, err := recommend(ctx)
	if err != nil {
		return music.Result{}, err
	}

	videoID, err := c.resolver.Resolve(ctx, rec.Song.Title, rec.Song.Artist)
	if err != nil {
		return music.Result{}, err
	}

	result := music.Result{
		Mood:    rec.Mood,
		Emoji:   rec.Emoji,
		Song:    rec.Song,
		VideoID: videoID,
	}

	// A clear while we were waiting on the network wins over this result.
	current, err := c.state.Epoch(ctx)
	if err != nil {
		return music.Result{}, fmt.Errorf("read epoch: %w", err)
	}
	if current != epoch {
		return music.Result{}, music.ErrSuperseded
	}

	if err := c.history.Record(ctx, rec.Song); err != nil {
		return music.Result{}, fmt.Errorf("record history: %w", err)
	}

	if err := c.state.SetIfCurrent(ctx, music.StateFromResult(result), surfaceID, epoch); err != nil {
		return music.Result{}, err
	}

	c.logger.WithFields(logrus.Fields{
		"mood":    result.Mood,
		"song":    result.Song.String(),
		"videoId": result.VideoID,
	}).Info("now playing")

	return result, nil
}

// Install seeds default settings when none exist and wipes the session area.
func (c *Coordinator) Install(ctx context.Context) error {
	if err := c.settings.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if err := c.state.Reset(ctx); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (c *Coordinator) observe(kind Kind, started time.Time, err error) {
	code := CodeOf(err)
	outcome := string(code)
	if outcome == "" {
		outcome = "ok"
	}

	if c.metrics != nil {
		c.metrics.Requests.WithLabelValues(string(kind), outcome).Inc()
		c.metrics.Duration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
	}

	if err != nil {
		entry := c.logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "code": code})
		if code == CodeInternal {
			entry.Error("request failed")
		} else {
			entry.Warn("request failed")
		}
	}
}

func ack(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return Ack{Success: true}, nil
}
