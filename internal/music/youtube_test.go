package music

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxySearcher_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "Bill Evans Autumn Leaves official audio", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("maxResults"))
		assert.Empty(t, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"items":[{"id":{"videoId":"abc123"}},{"id":{}}]}`))
	}))
	defer srv.Close()

	ids, err := NewProxySearcher(srv.URL+"/", time.Second).Search(context.Background(), "Bill Evans Autumn Leaves official audio", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, ids)
}

func TestYouTubeSearcher_SendsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	s := NewYouTubeSearcher("secret", time.Second)
	s.Endpoint = srv.URL

	ids, err := s.Search(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHTTPSearcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad json" {
			_, _ = w.Write([]byte(`{"items":`))
			return
		}
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewProxySearcher(srv.URL, time.Second)

	_, err := s.Search(context.Background(), "anything", 1)
	assert.ErrorIs(t, err, ErrResolveFailed)

	_, err = s.Search(context.Background(), "bad json", 1)
	assert.ErrorIs(t, err, ErrResolveFailed)

	_, err = s.Search(context.Background(), "   ", 1)
	assert.ErrorIs(t, err, ErrResolveFailed)
}
