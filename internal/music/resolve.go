package music

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	// ErrResolveFailed marks a single search attempt that did not work out.
	ErrResolveFailed = errors.New("failed to resolve track")
	// ErrNotFound means every query variant came back empty or failed.
	ErrNotFound    = errors.New("no playable video found")
	ErrSearcherNil = errors.New("searcher is not configured")
)

// Searcher runs one free-text video search and returns video IDs in rank order.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// Resolver turns a song into a video ID by trying progressively looser queries.
type Resolver struct {
	searcher Searcher
	logger   logrus.FieldLogger
	attempts *prometheus.CounterVec
}

func NewResolver(searcher Searcher, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{searcher: searcher, logger: logger}
}

// WithMetrics counts each query attempt by outcome (hit, empty, error).
func (r *Resolver) WithMetrics(attempts *prometheus.CounterVec) *Resolver {
	r.attempts = attempts
	return r
}

func QueryVariants(title, artist string) []string {
	base := strings.TrimSpace(artist + " " + title)
	return []string{
		base + " official audio",
		base + " official",
		base,
	}
}

// Resolve returns the first hit. Search errors only move on to the next
// variant; a cancelled context stops the loop.
func (r *Resolver) Resolve(ctx context.Context, title, artist string) (string, error) {
	if r == nil || r.searcher == nil {
		return "", ErrSearcherNil
	}

	for _, query := range QueryVariants(title, artist) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		ids, err := r.searcher.Search(ctx, query, 1)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			r.observe("error")
			r.logger.WithError(err).WithField("query", query).Debug("search attempt failed")
			continue
		}

		if len(ids) > 0 && ids[0] != "" {
			r.observe("hit")
			return ids[0], nil
		}
		r.observe("empty")
	}

	return "", fmt.Errorf("%w: %s - %s", ErrNotFound, artist, title)
}

func (r *Resolver) observe(outcome string) {
	if r.attempts != nil {
		r.attempts.WithLabelValues(outcome).Inc()
	}
}
