package status

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	shared "github.com/hxnx/synesth/internal/features/shared"
	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/surface"
)

var startedAt = time.Now()

// Snapshot is everything the status card shows.
type Snapshot struct {
	GatewayLatency time.Duration
	Guilds         int
	Shards         int
	Uptime         time.Duration
	MemoryMB       float64
	NowPlaying     *music.NowPlaying
	Now            time.Time
}

func Collect(ctx context.Context, s *discordgo.Session, api *surface.API) Snapshot {
	snap := Snapshot{
		Uptime: time.Since(startedAt).Round(time.Second),
		Shards: 1,
		Now:    time.Now(),
	}

	if s != nil {
		snap.GatewayLatency = s.HeartbeatLatency().Round(time.Millisecond)
		if s.State != nil {
			snap.Guilds = len(s.State.Guilds)
		}
		if s.ShardCount > 0 {
			snap.Shards = s.ShardCount
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	snap.MemoryMB = float64(mem.Alloc) / 1024.0 / 1024.0

	if api != nil {
		np, err := api.GetNowPlaying(ctx)
		if err != nil {
			logrus.WithError(err).Debug("status: now playing unavailable")
		}
		snap.NowPlaying = np
	}
	return snap
}

func Lines(snap Snapshot) []string {
	playing := "nothing"
	if snap.NowPlaying.IsActive(snap.Now) {
		playing = fmt.Sprintf("%s %s (%s)", snap.NowPlaying.Emoji, snap.NowPlaying.Song, snap.NowPlaying.Mood)
	}

	return []string{
		fmt.Sprintf("**Gateway latency:** %s", snap.GatewayLatency),
		fmt.Sprintf("**Servers:** %d • **Shards:** %d", snap.Guilds, snap.Shards),
		fmt.Sprintf("**Uptime:** %s", snap.Uptime),
		fmt.Sprintf("**Memory:** %.2f MB", snap.MemoryMB),
		fmt.Sprintf("**Playing:** %s", playing),
	}
}

func BuildComponents(snap Snapshot) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "**synesth status**"},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}
	for _, line := range Lines(snap) {
		components = append(components, discordgo.TextDisplay{Content: line})
	}
	components = append(components, discordgo.TextDisplay{Content: fmt.Sprintf("updated <t:%d:R>", snap.Now.Unix())})

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  components,
		},
	}
}

func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, messenger surface.Messenger) {
	if s == nil || i == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var api *surface.API
	if messenger != nil {
		api = surface.NewAPI(messenger, shared.SurfaceID(i))
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: BuildComponents(Collect(ctx, s, api)),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to respond to status")
	}
}
