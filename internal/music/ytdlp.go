package music

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

const maxYTDLPResults = 10

// YTDLPSearcher shells out to yt-dlp's ytsearchN: pseudo-URL. Useful when
// neither the proxy nor an API key is available.
type YTDLPSearcher struct {
	Binary string
}

func NewYTDLPSearcher(binary string) *YTDLPSearcher {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPSearcher{Binary: binary}
}

func (s *YTDLPSearcher) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrResolveFailed)
	}
	if maxResults <= 0 {
		maxResults = 1
	}
	if maxResults > maxYTDLPResults {
		maxResults = maxYTDLPResults
	}

	args := []string{
		"--no-warnings",
		"--dump-single-json",
		"--skip-download",
		"--flat-playlist",
		fmt.Sprintf("ytsearch%d:%s", maxResults, query),
	}

	cmd := exec.CommandContext(ctx, s.Binary, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp failed: %v", ErrResolveFailed, err)
	}

	var root ytDLPItem
	if err := json.Unmarshal(output, &root); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrResolveFailed, err)
	}

	return pickYTDLPIDs(root, maxResults), nil
}

type ytDLPItem struct {
	Type       string      `json:"_type"`
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	WebpageURL string      `json:"webpage_url"`
	URL        string      `json:"url"`
	Entries    []ytDLPItem `json:"entries"`
}

// pickYTDLPIDs flattens a search playlist into at most limit video IDs.
// A playlist's own id is the search text, so only a bare video counts.
func pickYTDLPIDs(root ytDLPItem, limit int) []string {
	if root.Type == "video" && root.ID != "" {
		return []string{root.ID}
	}
	if len(root.Entries) == 0 {
		return nil
	}

	ids := make([]string, 0, limit)
	for _, entry := range root.Entries {
		if entry.ID == "" {
			continue
		}
		ids = append(ids, entry.ID)
		if len(ids) >= limit {
			break
		}
	}
	return ids
}
