package mood

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hxnx/synesth/internal/music"
)

const defaultEmoji = "🎵"

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\n?")
	trailingFence = regexp.MustCompile("\\n?```$")
)

type rawResult struct {
	Mood  string `json:"mood"`
	Emoji string `json:"emoji"`
	Song  *struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
	} `json:"song"`
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = leadingFence.ReplaceAllString(content, "")
	content = trailingFence.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// parseResult decodes model output. mood, song.title and song.artist are
// required; a missing emoji gets the default.
func parseResult(content string) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Result{}, ErrEmptyResponse
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if strings.TrimSpace(raw.Mood) == "" {
		return Result{}, fmt.Errorf("%w: missing mood", ErrMalformedResponse)
	}
	if raw.Song == nil || strings.TrimSpace(raw.Song.Title) == "" || strings.TrimSpace(raw.Song.Artist) == "" {
		return Result{}, fmt.Errorf("%w: missing song", ErrMalformedResponse)
	}

	emoji := raw.Emoji
	if strings.TrimSpace(emoji) == "" {
		emoji = defaultEmoji
	}

	return Result{
		Mood:  raw.Mood,
		Emoji: emoji,
		Song:  music.Song{Title: raw.Song.Title, Artist: raw.Song.Artist},
	}, nil
}
