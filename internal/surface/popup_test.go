package surface

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxnx/synesth/internal/music"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []music.Result
}

func (r *recordingApplier) Apply(_ context.Context, res music.Result) error {
	r.mu.Lock()
	r.applied = append(r.applied, res)
	r.mu.Unlock()
	return nil
}

func TestPopup_NowPlaying(t *testing.T) {
	coord := newTestCoordinator(t)
	target := &recordingApplier{}
	popup := NewPopup(NewAPI(Local{Dispatcher: coord}, "popup"), target)
	ctx := context.Background()

	view, err := popup.NowPlaying(ctx)
	require.NoError(t, err)
	assert.False(t, view.Active)
	assert.Equal(t, "Not playing", view.Status)

	res, err := popup.SubmitManualMood(ctx, "  rainy night ")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "rainy night", res.Mood)
	require.Len(t, target.applied, 1)
	assert.Equal(t, *res, target.applied[0])

	view, err = popup.NowPlaying(ctx)
	require.NoError(t, err)
	assert.True(t, view.Active)
	assert.Equal(t, "Playing", view.Status)
	assert.Equal(t, "rainy night", view.Mood)
	assert.Equal(t, music.Song{Title: "Says", Artist: "Nils Frahm"}, view.Song)

	popup.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	view, err = popup.NowPlaying(ctx)
	require.NoError(t, err)
	assert.False(t, view.Active)
}

func TestPopup_BlankManualMoodIsNoop(t *testing.T) {
	target := &recordingApplier{}
	popup := NewPopup(NewAPI(Local{Dispatcher: dispatchFunc(nil)}, "popup"), target)

	res, err := popup.SubmitManualMood(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, target.applied)
}

func TestPopup_ManualMoodDrivesWidget(t *testing.T) {
	coord := newTestCoordinator(t)
	w := NewWidget(NewAPI(Local{Dispatcher: coord}, "tab-1"), nil)
	w.tickInterval = time.Hour
	defer w.Teardown()

	popup := NewPopup(NewAPI(Local{Dispatcher: coord}, "popup"), w)
	_, err := popup.SubmitManualMood(context.Background(), "focus")
	require.NoError(t, err)

	v := w.View()
	assert.Equal(t, StatusPlaying, v.Status)
	assert.Equal(t, "focus", v.Mood)
	assert.Equal(t, "vid-Nils Frahm", v.VideoID)
}

func TestPopup_SaveVolumeKeepsOtherSettings(t *testing.T) {
	coord := newTestCoordinator(t)
	api := NewAPI(Local{Dispatcher: coord}, "popup")
	popup := NewPopup(api, nil)
	ctx := context.Background()

	require.NoError(t, api.SaveSettings(ctx, music.Settings{Autoplay: false, Volume: 50, ExtensionActive: true}))
	require.NoError(t, popup.SaveVolume(ctx, 15))

	vol, err := popup.Volume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, vol)

	s, err := api.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, music.Settings{Autoplay: false, Volume: 15, ExtensionActive: true}, s)

	assert.Error(t, popup.SaveVolume(ctx, 101))
}

func TestPopup_Poll(t *testing.T) {
	coord := newTestCoordinator(t)
	popup := NewPopup(NewAPI(Local{Dispatcher: coord}, "popup"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	renders := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		popup.Poll(ctx, 5*time.Millisecond, func(NowPlayingView, error) {
			mu.Lock()
			renders++
			mu.Unlock()
		})
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return renders >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
