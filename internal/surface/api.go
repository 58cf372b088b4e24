package surface

import (
	"context"

	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/session"
)

// API is the typed request set a surface sends, stamped with its surface ID.
type API struct {
	m         Messenger
	surfaceID string
}

func NewAPI(m Messenger, surfaceID string) *API {
	return &API{m: m, surfaceID: surfaceID}
}

func (a *API) SurfaceID() string {
	return a.surfaceID
}

func (a *API) AnalyzeMood(ctx context.Context, text, pageURL string) (music.Result, error) {
	var res music.Result
	err := a.m.Send(ctx, session.AnalyzeMood{Text: text, URL: pageURL, SurfaceID: a.surfaceID}, &res)
	return res, err
}

func (a *API) ManualMood(ctx context.Context, label string) (music.Result, error) {
	var res music.Result
	err := a.m.Send(ctx, session.ManualMood{Mood: label, SurfaceID: a.surfaceID}, &res)
	return res, err
}

func (a *API) NextSong(ctx context.Context, currentMood string) (music.Result, error) {
	var res music.Result
	err := a.m.Send(ctx, session.NextSong{CurrentMood: currentMood, SurfaceID: a.surfaceID}, &res)
	return res, err
}

func (a *API) GetSettings(ctx context.Context) (music.Settings, error) {
	var s music.Settings
	err := a.m.Send(ctx, session.GetSettings{}, &s)
	return s, err
}

func (a *API) SaveSettings(ctx context.Context, s music.Settings) error {
	return a.m.Send(ctx, session.SaveSettings{Settings: &s}, nil)
}

func (a *API) GetPlayerState(ctx context.Context) (*music.PlaybackState, error) {
	var state *music.PlaybackState
	err := a.m.Send(ctx, session.GetPlayerState{}, &state)
	return state, err
}

func (a *API) SavePlayerState(ctx context.Context, state music.PlaybackState) error {
	return a.m.Send(ctx, session.SavePlayerState{State: &state, SurfaceID: a.surfaceID}, nil)
}

func (a *API) ClearPlayerState(ctx context.Context) error {
	return a.m.Send(ctx, session.ClearPlayerState{}, nil)
}

func (a *API) GetNowPlaying(ctx context.Context) (*music.NowPlaying, error) {
	var np *music.NowPlaying
	err := a.m.Send(ctx, session.GetNowPlaying{}, &np)
	return np, err
}

func (a *API) GetHistory(ctx context.Context) ([]music.HistoryEntry, error) {
	var entries []music.HistoryEntry
	err := a.m.Send(ctx, session.GetHistory{}, &entries)
	return entries, err
}

func (a *API) GetWidgetPosition(ctx context.Context) (*music.WidgetPosition, error) {
	var pos *music.WidgetPosition
	err := a.m.Send(ctx, session.GetWidgetPosition{}, &pos)
	return pos, err
}

func (a *API) SaveWidgetPosition(ctx context.Context, pos music.WidgetPosition) error {
	return a.m.Send(ctx, session.SaveWidgetPosition{Position: &pos}, nil)
}
