package music

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeYTDLP(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := "#!/bin/sh\ncat <<'JSON'\n" + body + "\nJSON\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestYTDLPSearcher_Search(t *testing.T) {
	bin := writeFakeYTDLP(t, `{"entries":[{"id":""},{"id":"abc123","title":"Autumn Leaves"},{"id":"def456"}]}`)

	ids, err := NewYTDLPSearcher(bin).Search(context.Background(), "Bill Evans Autumn Leaves", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, ids)
}

func TestYTDLPSearcher_NoHitsIsEmpty(t *testing.T) {
	bin := writeFakeYTDLP(t, `{"_type":"playlist","id":"zzqx nohit official audio","title":"zzqx nohit official audio","entries":[]}`)

	ids, err := NewYTDLPSearcher(bin).Search(context.Background(), "zzqx nohit official audio", 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolver_YTDLPNoHitsIsNotFound(t *testing.T) {
	bin := writeFakeYTDLP(t, `{"_type":"playlist","id":"whatever was searched","entries":[]}`)

	_, err := NewResolver(NewYTDLPSearcher(bin), nil).Resolve(context.Background(), "nohit", "zzqx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYTDLPSearcher_Failure(t *testing.T) {
	_, err := NewYTDLPSearcher(filepath.Join(t.TempDir(), "missing")).Search(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestPickYTDLPIDs(t *testing.T) {
	assert.Equal(t, []string{"solo"}, pickYTDLPIDs(ytDLPItem{Type: "video", ID: "solo"}, 3))
	assert.Nil(t, pickYTDLPIDs(ytDLPItem{ID: "untyped"}, 3))
	assert.Nil(t, pickYTDLPIDs(ytDLPItem{Type: "playlist", ID: "the query"}, 3))
	assert.Nil(t, pickYTDLPIDs(ytDLPItem{}, 3))
	assert.Equal(t, []string{"a", "b"}, pickYTDLPIDs(ytDLPItem{Entries: []ytDLPItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}}, 2))
}
