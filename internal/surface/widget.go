package surface

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusPlaying   Status = "playing"
)

type PlayerEvent int

const (
	PlayerEnded PlayerEvent = iota
	PlayerPlaying
	PlayerPaused
)

const (
	MessageReloaded   = "Extension reloaded. Please refresh."
	MessageNotEnough  = "Not enough content to analyze"
	MessageAPIError   = "API error. Try again later."
	MessageNotFound   = "Could not find song"
	MessageFailed     = "Analysis failed"
	MessageConnection = "Connection error. Try again."
	MessageAnalyzing  = "Analyzing page mood..."

	retryNeededSuffix   = " (retry needed)"
	defaultTickInterval = time.Second
	defaultWidgetVolume = 80
)

var (
	ErrNotEnoughContent = errors.New("not enough content to analyze")
	ErrBusy             = errors.New("analysis already in progress")
	ErrNothingPlaying   = errors.New("nothing is playing")
	ErrClosed           = errors.New("widget is closed")
)

// View is a snapshot for rendering.
type View struct {
	Status       Status
	Message      string
	Mood         string
	Emoji        string
	Song         music.Song
	VideoID      string
	PlaybackTime int
	Playing      bool
	Volume       int
	Position     *music.WidgetPosition
}

// Widget is the per-page player. It keeps a local copy of the playback
// state, counts seconds while playing and writes the offset back only on
// hide, unload or player events.
type Widget struct {
	api    *API
	logger logrus.FieldLogger

	tickInterval time.Duration

	mu        sync.Mutex
	status    Status
	message   string
	current   *music.PlaybackState
	playing   bool
	autoplay  bool
	volume    int
	position  *music.WidgetPosition
	gen       uint64
	torndown  bool
	teardown  []func()
	tickerRun bool
}

func NewWidget(api *API, logger logrus.FieldLogger) *Widget {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Widget{
		api:          api,
		logger:       logger,
		tickInterval: defaultTickInterval,
		status:       StatusIdle,
		autoplay:     true,
		volume:       defaultWidgetVolume,
	}
}

// Inject loads settings and position, rehydrates from the stored playback
// state and starts the playback counter.
func (w *Widget) Inject(ctx context.Context) error {
	settings, err := w.api.GetSettings(ctx)
	if err != nil {
		if w.handleInvalidated(err) {
			return err
		}
		w.logger.WithError(err).Warn("load settings failed, using defaults")
		settings = music.DefaultSettings()
	}

	pos, err := w.api.GetWidgetPosition(ctx)
	if err != nil && w.handleInvalidated(err) {
		return err
	}

	state, err := w.api.GetPlayerState(ctx)
	if err != nil {
		if w.handleInvalidated(err) {
			return err
		}
		w.logger.WithError(err).Warn("rehydrate failed")
	}

	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		return ErrClosed
	}
	w.autoplay = settings.Autoplay
	w.volume = settings.Volume
	w.position = pos
	if state != nil && state.VideoID != "" {
		restored := *state
		w.current = &restored
		w.status = StatusPlaying
		w.message = ""
		w.playing = settings.Autoplay
	}
	w.mu.Unlock()

	w.startTicker()
	return nil
}

func (w *Widget) startTicker() {
	w.mu.Lock()
	if w.tickerRun || w.torndown {
		w.mu.Unlock()
		return
	}
	w.tickerRun = true

	stop := make(chan struct{})
	done := make(chan struct{})
	w.teardown = append(w.teardown, func() {
		close(stop)
		<-done
	})
	interval := w.tickInterval
	w.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w.Tick()
			}
		}
	}()
}

// Tick advances the local offset by one second while actually playing.
// Background pages keep counting; the video keeps playing there too.
func (w *Widget) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusPlaying && w.playing && w.current != nil {
		w.current.PlaybackTime++
	}
}

// Analyze sends the page text for a fresh recommendation.
func (w *Widget) Analyze(ctx context.Context, page PageSnapshot) error {
	text := page.Text()

	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.status == StatusAnalyzing {
		w.mu.Unlock()
		return ErrBusy
	}
	if utf8.RuneCountInString(text) < MinAnalyzeLength {
		w.status = w.restingStatus()
		w.message = MessageNotEnough
		w.mu.Unlock()
		return ErrNotEnoughContent
	}
	w.status = StatusAnalyzing
	w.message = MessageAnalyzing
	gen := w.gen
	w.mu.Unlock()

	res, err := w.api.AnalyzeMood(ctx, text, page.URL)
	if err != nil {
		if w.handleInvalidated(err) {
			return err
		}
		w.mu.Lock()
		if gen == w.gen {
			w.status = w.restingStatus()
			w.message = messageFor(err)
		}
		w.mu.Unlock()
		return err
	}

	if !w.apply(gen, res) {
		return nil
	}
	return w.Flush(ctx)
}

// Next asks for another song in the current mood, avoiding recent plays.
func (w *Widget) Next(ctx context.Context) error {
	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.current == nil {
		w.mu.Unlock()
		return ErrNothingPlaying
	}
	if w.status == StatusAnalyzing {
		w.mu.Unlock()
		return ErrBusy
	}
	label := w.current.Mood
	w.status = StatusAnalyzing
	gen := w.gen
	w.mu.Unlock()

	res, err := w.api.NextSong(ctx, label)
	if err != nil {
		if w.handleInvalidated(err) {
			return err
		}
		w.mu.Lock()
		if gen == w.gen {
			w.status = StatusPlaying
			w.message = retryLabel(label)
		}
		w.mu.Unlock()
		return err
	}

	if !w.apply(gen, res) {
		return nil
	}
	return w.Flush(ctx)
}

// Apply takes a result chosen elsewhere, e.g. a manual mood from the popup.
func (w *Widget) Apply(ctx context.Context, res music.Result) error {
	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		return ErrClosed
	}
	gen := w.gen
	w.mu.Unlock()

	if !w.apply(gen, res) {
		return nil
	}
	return w.Flush(ctx)
}

// restingStatus is where a failed request leaves the widget: still playing
// whatever was loaded, otherwise idle. Callers hold w.mu.
func (w *Widget) restingStatus() Status {
	if w.current != nil && w.current.VideoID != "" {
		return StatusPlaying
	}
	return StatusIdle
}

// apply installs res unless the widget was closed since gen was read.
func (w *Widget) apply(gen uint64, res music.Result) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.gen || w.torndown {
		return false
	}
	w.current = music.StateFromResult(res)
	w.status = StatusPlaying
	w.message = ""
	w.playing = true
	return true
}

func (w *Widget) PlayerEvent(ctx context.Context, ev PlayerEvent) error {
	switch ev {
	case PlayerEnded:
		return w.Next(ctx)
	case PlayerPlaying:
		w.setPlaying(true)
	case PlayerPaused:
		w.setPlaying(false)
	}
	return w.Flush(ctx)
}

func (w *Widget) setPlaying(playing bool) {
	w.mu.Lock()
	w.playing = playing
	w.mu.Unlock()
}

// PageHidden saves the offset; the page may never come back.
func (w *Widget) PageHidden(ctx context.Context) error {
	return w.Flush(ctx)
}

// PageUnload saves the offset and stops the counter.
func (w *Widget) PageUnload(ctx context.Context) error {
	err := w.Flush(ctx)
	w.Teardown()
	return err
}

// Flush writes the local state, including the offset, back to the store.
func (w *Widget) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.current == nil || w.current.VideoID == "" || w.torndown {
		w.mu.Unlock()
		return nil
	}
	snapshot := *w.current
	w.mu.Unlock()

	err := w.api.SavePlayerState(ctx, snapshot)
	if err != nil {
		w.handleInvalidated(err)
	}
	return err
}

func (w *Widget) SetVolume(volume int) {
	w.mu.Lock()
	w.volume = volume
	w.mu.Unlock()
}

func (w *Widget) MoveTo(ctx context.Context, pos music.WidgetPosition) error {
	w.mu.Lock()
	w.position = &pos
	w.mu.Unlock()

	err := w.api.SaveWidgetPosition(ctx, pos)
	if err != nil {
		w.handleInvalidated(err)
	}
	return err
}

// Close stops playback for every surface: local state is dropped, in-flight
// results are discarded and the shared state is cleared.
func (w *Widget) Close(ctx context.Context) error {
	w.mu.Lock()
	w.gen++
	w.status = StatusIdle
	w.message = ""
	w.current = nil
	w.playing = false
	w.mu.Unlock()

	w.Teardown()

	err := w.api.ClearPlayerState(ctx)
	if err != nil && !errors.Is(err, ErrContextInvalidated) {
		w.logger.WithError(err).Warn("clear player state failed")
	}
	return err
}

// Teardown runs the registered hooks once.
func (w *Widget) Teardown() {
	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		return
	}
	w.torndown = true
	hooks := w.teardown
	w.teardown = nil
	w.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// OnTeardown registers a cleanup hook, run in reverse order.
func (w *Widget) OnTeardown(fn func()) {
	w.mu.Lock()
	if w.torndown {
		w.mu.Unlock()
		fn()
		return
	}
	w.teardown = append(w.teardown, fn)
	w.mu.Unlock()
}

func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Status:   w.status,
		Message:  w.message,
		Playing:  w.playing,
		Volume:   w.volume,
		Position: w.position,
	}
	if w.current != nil {
		v.Mood = w.current.Mood
		v.Emoji = w.current.Emoji
		v.Song = w.current.Song
		v.VideoID = w.current.VideoID
		v.PlaybackTime = w.current.PlaybackTime
	}
	return v
}

// handleInvalidated tears the widget down when the coordinator went away.
func (w *Widget) handleInvalidated(err error) bool {
	if !errors.Is(err, ErrContextInvalidated) {
		return false
	}

	w.mu.Lock()
	w.gen++
	w.status = StatusIdle
	w.message = MessageReloaded
	w.playing = false
	w.mu.Unlock()

	w.Teardown()
	return true
}

func messageFor(err error) string {
	var se *mood.ServiceError
	switch {
	case errors.Is(err, ErrContextInvalidated):
		return MessageReloaded
	case errors.Is(err, ErrUnreachable):
		return MessageConnection
	case errors.As(err, &se):
		return MessageAPIError
	case errors.Is(err, music.ErrNotFound):
		return MessageNotFound
	default:
		return MessageFailed
	}
}

// retryLabel is what the status line shows after a failed next-song.
func retryLabel(moodLabel string) string {
	return strings.TrimSpace(moodLabel) + retryNeededSuffix
}
