package music

import (
	"errors"
	"fmt"
	"time"
)

// NowPlayingTTL is how long a NowPlaying record counts as current.
const NowPlayingTTL = time.Hour

var (
	ErrInvalidState    = errors.New("invalid playback state")
	ErrInvalidSettings = errors.New("invalid settings")
)

type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (s Song) String() string {
	return s.Artist + " - " + s.Title
}

// Result is a recommendation that has been resolved to a playable video.
type Result struct {
	Mood    string `json:"mood"`
	Emoji   string `json:"emoji"`
	Song    Song   `json:"song"`
	VideoID string `json:"videoId"`
}

// PlaybackState is the single shared "what is playing and where" slot.
// PlaybackTime is whole seconds into the video.
type PlaybackState struct {
	Mood         string `json:"mood"`
	Emoji        string `json:"emoji"`
	Song         Song   `json:"song"`
	VideoID      string `json:"videoId"`
	PlaybackTime int    `json:"playbackTime"`
}

func (p *PlaybackState) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: state is required", ErrInvalidState)
	}
	if p.PlaybackTime < 0 {
		return fmt.Errorf("%w: playbackTime must not be negative", ErrInvalidState)
	}
	return nil
}

func StateFromResult(r Result) *PlaybackState {
	return &PlaybackState{
		Mood:    r.Mood,
		Emoji:   r.Emoji,
		Song:    r.Song,
		VideoID: r.VideoID,
	}
}

// NowPlaying is derived from every state write. Timestamp is epoch millis.
type NowPlaying struct {
	Mood      string `json:"mood"`
	Emoji     string `json:"emoji"`
	Song      Song   `json:"song"`
	VideoID   string `json:"videoId"`
	SurfaceID string `json:"surfaceId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (n *NowPlaying) At() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// IsActive applies the staleness policy. Nothing is ever expired in storage.
func (n *NowPlaying) IsActive(now time.Time) bool {
	if n == nil {
		return false
	}
	return now.Sub(n.At()) < NowPlayingTTL
}

type HistoryEntry struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

func (h HistoryEntry) AvoidString() string {
	return h.Artist + " - " + h.Title
}

type Settings struct {
	Autoplay        bool `json:"autoplay"`
	Volume          int  `json:"volume"`
	ExtensionActive bool `json:"extensionActive"`
}

func DefaultSettings() Settings {
	return Settings{
		Autoplay:        true,
		Volume:          80,
		ExtensionActive: true,
	}
}

func (s Settings) Validate() error {
	if s.Volume < 0 || s.Volume > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100", ErrInvalidSettings)
	}
	return nil
}

type WidgetPosition struct {
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
}
