package surface

import (
	"context"
	"strings"
	"time"

	"github.com/hxnx/synesth/internal/music"
)

const PollInterval = 5 * time.Second

// Applier takes a result produced outside the active page.
type Applier interface {
	Apply(ctx context.Context, res music.Result) error
}

// NowPlayingView is what the popup header renders.
type NowPlayingView struct {
	Active bool
	Status string
	Mood   string
	Emoji  string
	Song   music.Song
}

// Popup is the small control panel. It only reads shared state; playback
// itself stays with the widget it forwards manual results to.
type Popup struct {
	api    *API
	target Applier
	now    func() time.Time
}

func NewPopup(api *API, target Applier) *Popup {
	return &Popup{api: api, target: target, now: time.Now}
}

func (p *Popup) NowPlaying(ctx context.Context) (NowPlayingView, error) {
	np, err := p.api.GetNowPlaying(ctx)
	if err != nil {
		return NowPlayingView{Status: "Not playing"}, err
	}
	if !np.IsActive(p.now()) {
		return NowPlayingView{Status: "Not playing"}, nil
	}
	return NowPlayingView{
		Active: true,
		Status: "Playing",
		Mood:   np.Mood,
		Emoji:  np.Emoji,
		Song:   np.Song,
	}, nil
}

// SubmitManualMood asks for a song in the typed mood and hands it to the
// target. Blank input does nothing.
func (p *Popup) SubmitManualMood(ctx context.Context, label string) (*music.Result, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}

	res, err := p.api.ManualMood(ctx, label)
	if err != nil {
		return nil, err
	}
	if p.target != nil {
		if err := p.target.Apply(ctx, res); err != nil {
			return &res, err
		}
	}
	return &res, nil
}

func (p *Popup) Volume(ctx context.Context) (int, error) {
	s, err := p.api.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	return s.Volume, nil
}

// SaveVolume merges the volume into the stored settings; the store replaces
// the whole record.
func (p *Popup) SaveVolume(ctx context.Context, volume int) error {
	s, err := p.api.GetSettings(ctx)
	if err != nil {
		return err
	}
	s.Volume = volume
	return p.api.SaveSettings(ctx, s)
}

// Poll renders now-playing immediately and then every PollInterval until
// ctx is done.
func (p *Popup) Poll(ctx context.Context, interval time.Duration, render func(NowPlayingView, error)) {
	if interval <= 0 {
		interval = PollInterval
	}

	render(p.NowPlaying(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(p.NowPlaying(ctx))
		}
	}
}
