package surface

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hxnx/synesth/internal/database"
	"github.com/hxnx/synesth/internal/logging"
	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/session"
)

type dispatchFunc func(ctx context.Context, req session.Request) (any, error)

func (f dispatchFunc) Dispatch(ctx context.Context, req session.Request) (any, error) {
	return f(ctx, req)
}

type stubRecommender struct{}

func (stubRecommender) FromContent(context.Context, string, string) (mood.Result, error) {
	return mood.Result{Mood: "Calm", Emoji: "🌊", Song: music.Song{Title: "Says", Artist: "Nils Frahm"}}, nil
}

func (stubRecommender) FromMood(_ context.Context, label string, _ []string) (mood.Result, error) {
	return mood.Result{Mood: label, Emoji: "🌧", Song: music.Song{Title: "Says", Artist: "Nils Frahm"}}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string, int) ([]string, error) {
	return []string{"vid-Nils Frahm"}, nil
}

// newTestCoordinator wires a real coordinator over miniredis and in-memory
// sqlite with a canned recommender.
func newTestCoordinator(t *testing.T) *session.Coordinator {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	conn, err := database.Open(&database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return session.NewCoordinator(
		stubRecommender{},
		music.NewResolver(stubSearcher{}, logging.Discard()),
		music.NewHistoryStore(client),
		music.NewStateStore(client),
		database.NewSettingsRepository(conn, database.DriverSQLite),
		logging.Discard(),
	)
}
