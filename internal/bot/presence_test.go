package bot

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/hxnx/synesth/internal/music"
)

func TestPresenceText(t *testing.T) {
	now := time.Now()
	np := &music.NowPlaying{Emoji: "🍂", Song: music.Song{Title: "Autumn Leaves", Artist: "Bill Evans"}, Timestamp: now.UnixMilli()}

	assert.Equal(t, "🍂 Bill Evans - Autumn Leaves", presenceText(np, now))
	assert.Equal(t, presenceIdle, presenceText(np, now.Add(music.NowPlayingTTL)))
	assert.Equal(t, presenceIdle, presenceText(nil, now))

	long := &music.NowPlaying{Song: music.Song{Title: strings.Repeat("x", 300)}, Timestamp: now.UnixMilli()}
	assert.Equal(t, presenceMaxRunes, utf8.RuneCountInString(presenceText(long, now)))
}
