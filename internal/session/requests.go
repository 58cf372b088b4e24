package session

import (
	"encoding/json"
	"fmt"

	"github.com/hxnx/synesth/internal/music"
)

type Kind string

const (
	KindAnalyzeMood        Kind = "analyze-mood"
	KindManualMood         Kind = "manual-mood"
	KindNextSong           Kind = "next-song"
	KindGetSettings        Kind = "get-settings"
	KindSaveSettings       Kind = "save-settings"
	KindGetPlayerState     Kind = "get-player-state"
	KindSavePlayerState    Kind = "save-player-state"
	KindClearPlayerState   Kind = "clear-player-state"
	KindGetNowPlaying      Kind = "get-now-playing"
	KindGetHistory         Kind = "get-history"
	KindGetWidgetPosition  Kind = "get-widget-position"
	KindSaveWidgetPosition Kind = "save-widget-position"
)

// Kinds lists every request kind the coordinator understands.
func Kinds() []Kind {
	return []Kind{
		KindAnalyzeMood,
		KindManualMood,
		KindNextSong,
		KindGetSettings,
		KindSaveSettings,
		KindGetPlayerState,
		KindSavePlayerState,
		KindClearPlayerState,
		KindGetNowPlaying,
		KindGetHistory,
		KindGetWidgetPosition,
		KindSaveWidgetPosition,
	}
}

// Request is a closed set: only the types in this file implement it.
type Request interface {
	Kind() Kind
	sealed()
}

type AnalyzeMood struct {
	Text      string `json:"text"`
	URL       string `json:"url"`
	SurfaceID string `json:"surfaceId,omitempty"`
}

type ManualMood struct {
	Mood      string `json:"mood"`
	SurfaceID string `json:"surfaceId,omitempty"`
}

type NextSong struct {
	CurrentMood string `json:"currentMood"`
	SurfaceID   string `json:"surfaceId,omitempty"`
}

type GetSettings struct{}

// SaveSettings replaces all settings; callers merge before sending.
type SaveSettings struct {
	Settings *music.Settings `json:"settings"`
}

type GetPlayerState struct{}

type SavePlayerState struct {
	State     *music.PlaybackState `json:"state"`
	SurfaceID string               `json:"surfaceId,omitempty"`
}

type ClearPlayerState struct{}

type GetNowPlaying struct{}

type GetHistory struct{}

type GetWidgetPosition struct{}

type SaveWidgetPosition struct {
	Position *music.WidgetPosition `json:"position"`
}

func (AnalyzeMood) Kind() Kind        { return KindAnalyzeMood }
func (ManualMood) Kind() Kind         { return KindManualMood }
func (NextSong) Kind() Kind           { return KindNextSong }
func (GetSettings) Kind() Kind        { return KindGetSettings }
func (SaveSettings) Kind() Kind       { return KindSaveSettings }
func (GetPlayerState) Kind() Kind     { return KindGetPlayerState }
func (SavePlayerState) Kind() Kind    { return KindSavePlayerState }
func (ClearPlayerState) Kind() Kind   { return KindClearPlayerState }
func (GetNowPlaying) Kind() Kind      { return KindGetNowPlaying }
func (GetHistory) Kind() Kind         { return KindGetHistory }
func (GetWidgetPosition) Kind() Kind  { return KindGetWidgetPosition }
func (SaveWidgetPosition) Kind() Kind { return KindSaveWidgetPosition }

func (AnalyzeMood) sealed()        {}
func (ManualMood) sealed()         {}
func (NextSong) sealed()           {}
func (GetSettings) sealed()        {}
func (SaveSettings) sealed()       {}
func (GetPlayerState) sealed()     {}
func (SavePlayerState) sealed()    {}
func (ClearPlayerState) sealed()   {}
func (GetNowPlaying) sealed()      {}
func (GetHistory) sealed()         {}
func (GetWidgetPosition) sealed()  {}
func (SaveWidgetPosition) sealed() {}

// Ack is the reply to requests that only change state.
type Ack struct {
	Success bool `json:"success"`
}

// DecodeRequest reads a {"type": ..., ...payload} envelope.
func DecodeRequest(raw []byte) (Request, error) {
	var envelope struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	switch envelope.Type {
	case KindAnalyzeMood:
		return decodeAs[AnalyzeMood](raw)
	case KindManualMood:
		return decodeAs[ManualMood](raw)
	case KindNextSong:
		return decodeAs[NextSong](raw)
	case KindGetSettings:
		return GetSettings{}, nil
	case KindSaveSettings:
		return decodeAs[SaveSettings](raw)
	case KindGetPlayerState:
		return GetPlayerState{}, nil
	case KindSavePlayerState:
		return decodeAs[SavePlayerState](raw)
	case KindClearPlayerState:
		return ClearPlayerState{}, nil
	case KindGetNowPlaying:
		return GetNowPlaying{}, nil
	case KindGetHistory:
		return GetHistory{}, nil
	case KindGetWidgetPosition:
		return GetWidgetPosition{}, nil
	case KindSaveWidgetPosition:
		return decodeAs[SaveWidgetPosition](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, envelope.Type)
	}
}

func decodeAs[T Request](raw []byte) (Request, error) {
	var req T
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return req, nil
}

// EncodeRequest is the inverse of DecodeRequest.
func EncodeRequest(req Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}

	kind, err := json.Marshal(req.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = kind

	return json.Marshal(fields)
}
