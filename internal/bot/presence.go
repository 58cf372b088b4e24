package bot

import (
	"context"
	"time"

	"github.com/hxnx/synesth/internal/music"
)

const (
	presenceUpdateInterval = 60 * time.Second
	presenceMaxRunes       = 120
	presenceIdle           = "for a mood"
)

func (b *Bot) startPresenceUpdater() {
	if b.presenceStop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	b.presenceStop = stop
	b.presenceDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(presenceUpdateInterval)
		defer ticker.Stop()

		b.updatePresence()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.updatePresence()
			}
		}
	}()
}

func (b *Bot) stopPresenceUpdater() {
	if b.presenceStop == nil {
		return
	}
	close(b.presenceStop)
	<-b.presenceDone
	b.presenceStop = nil
	b.presenceDone = nil
}

func (b *Bot) updatePresence() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	np, err := b.presence.GetNowPlaying(ctx)
	if err != nil {
		b.logger.WithError(err).Debug("presence: now playing unavailable")
	}
	status := presenceText(np, time.Now())

	for _, s := range b.sessions {
		if err := s.UpdateListeningStatus(status); err != nil {
			b.logger.WithError(err).Warn("failed to update presence")
		}
	}
}

// presenceText is the "Listening to ..." line.
func presenceText(np *music.NowPlaying, now time.Time) string {
	if !np.IsActive(now) {
		return presenceIdle
	}
	text := np.Emoji + " " + np.Song.String()
	if r := []rune(text); len(r) > presenceMaxRunes {
		text = string(r[:presenceMaxRunes-1]) + "…"
	}
	return text
}
