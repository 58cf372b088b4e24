package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const youtubeSearchEndpoint = "https://www.googleapis.com/youtube/v3/search"

// HTTPSearcher queries a YouTube-shaped search endpoint. The worker proxy
// and the Data API both answer with {items:[{id:{videoId}}]}.
type HTTPSearcher struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// NewProxySearcher searches through the worker proxy at {base}/api/search.
func NewProxySearcher(baseURL string, timeout time.Duration) *HTTPSearcher {
	return &HTTPSearcher{
		Endpoint:   strings.TrimRight(baseURL, "/") + "/api/search",
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// NewYouTubeSearcher calls the YouTube Data API directly.
func NewYouTubeSearcher(apiKey string, timeout time.Duration) *HTTPSearcher {
	return &HTTPSearcher{
		Endpoint:   youtubeSearchEndpoint,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

func (s *HTTPSearcher) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrResolveFailed)
	}
	if maxResults <= 0 {
		maxResults = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if s.APIKey != "" {
		params.Set("key", s.APIKey)
		params.Set("part", "snippet")
		params.Set("type", "video")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: search status %d", ErrResolveFailed, resp.StatusCode)
	}

	var payload youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrResolveFailed, err)
	}

	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}
