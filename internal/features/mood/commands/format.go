package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/session"
	"github.com/hxnx/synesth/internal/surface"
)

const (
	DefaultHistoryLimit = 10
	watchURLPrefix      = "https://www.youtube.com/watch?v="
)

func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

func DescribeResult(res music.Result) string {
	return fmt.Sprintf("%s **%s**\n%s\n%s", res.Emoji, res.Mood, res.Song, WatchURL(res.VideoID))
}

func DescribeNowPlaying(np *music.NowPlaying, now time.Time) string {
	if !np.IsActive(now) {
		return "Nothing is playing."
	}
	return fmt.Sprintf("%s **%s**\n%s\nstarted <t:%d:R>", np.Emoji, np.Mood, np.Song, np.At().Unix())
}

// DescribeHistory lists the newest entries first.
func DescribeHistory(entries []music.HistoryEntry, limit int) string {
	if len(entries) == 0 {
		return "No songs played yet."
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var b strings.Builder
	for n, i := 1, len(entries)-1; i >= 0 && n <= limit; n, i = n+1, i-1 {
		e := entries[i]
		fmt.Fprintf(&b, "%d. %s <t:%d:R>\n", n, e.AvoidString(), time.UnixMilli(e.Timestamp).Unix())
	}
	return strings.TrimRight(b.String(), "\n")
}

// ErrorMessage turns a pipeline failure into something a user can act on.
func ErrorMessage(err error) string {
	var se *mood.ServiceError
	switch {
	case errors.Is(err, music.ErrNotFound):
		return "Could not find a playable song for that mood. Try again."
	case errors.Is(err, music.ErrSuperseded):
		return "Playback was stopped while the song was being picked."
	case errors.As(err, &se):
		return "The recommendation service is having trouble. Try again later."
	case errors.Is(err, mood.ErrEmptyResponse), errors.Is(err, mood.ErrMalformedResponse):
		return "The recommendation came back unreadable. Try again."
	case errors.Is(err, session.ErrMissingInput), errors.Is(err, session.ErrMalformedRequest):
		return "That input was not valid."
	case errors.Is(err, surface.ErrUnreachable), errors.Is(err, surface.ErrContextInvalidated):
		return "The coordinator is not reachable."
	case errors.Is(err, music.ErrInvalidSettings):
		return "Volume must be between 0 and 100."
	default:
		return "Something went wrong."
	}
}
