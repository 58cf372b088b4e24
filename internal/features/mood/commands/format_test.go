package commands

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/surface"
)

func TestDescribeResult(t *testing.T) {
	got := DescribeResult(music.Result{
		Mood:    "Melancholic Autumn",
		Emoji:   "🍂",
		Song:    music.Song{Title: "Autumn Leaves", Artist: "Bill Evans"},
		VideoID: "abc123",
	})
	assert.Equal(t, "🍂 **Melancholic Autumn**\nBill Evans - Autumn Leaves\nhttps://www.youtube.com/watch?v=abc123", got)
}

func TestDescribeNowPlaying(t *testing.T) {
	now := time.Now()
	np := &music.NowPlaying{Mood: "Calm", Emoji: "🌊", Song: music.Song{Title: "Says", Artist: "Nils Frahm"}, Timestamp: now.Add(-time.Minute).UnixMilli()}

	assert.Contains(t, DescribeNowPlaying(np, now), "Nils Frahm - Says")
	assert.Equal(t, "Nothing is playing.", DescribeNowPlaying(np, now.Add(2*time.Hour)))
	assert.Equal(t, "Nothing is playing.", DescribeNowPlaying(nil, now))
}

func TestDescribeHistory(t *testing.T) {
	assert.Equal(t, "No songs played yet.", DescribeHistory(nil, 5))

	var entries []music.HistoryEntry
	for i := 1; i <= 4; i++ {
		entries = append(entries, music.HistoryEntry{Artist: fmt.Sprintf("A%d", i), Title: fmt.Sprintf("T%d", i), Timestamp: int64(i) * 1000})
	}

	assert.Equal(t, "1. A4 - T4 <t:4:R>\n2. A3 - T3 <t:3:R>", DescribeHistory(entries, 2))
	assert.Contains(t, DescribeHistory(entries, 0), "4. A1 - T1")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("wrap: %w", music.ErrNotFound), want: "Could not find a playable song for that mood. Try again."},
		{err: music.ErrSuperseded, want: "Playback was stopped while the song was being picked."},
		{err: &mood.ServiceError{Status: 500, Message: "x"}, want: "The recommendation service is having trouble. Try again later."},
		{err: mood.ErrMalformedResponse, want: "The recommendation came back unreadable. Try again."},
		{err: surface.ErrUnreachable, want: "The coordinator is not reachable."},
		{err: music.ErrInvalidSettings, want: "Volume must be between 0 and 100."},
		{err: errors.New("boom"), want: "Something went wrong."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err), tt.err.Error())
	}
}
