package music

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxnx/synesth/internal/logging"
)

// fakeSearcher answers from a per-query table and records every call.
type fakeSearcher struct {
	mu      sync.Mutex
	answers map[string][]string
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.answers[query], nil
}

func newTestResolver(f *fakeSearcher) *Resolver {
	return NewResolver(f, logging.Discard())
}

func TestQueryVariants(t *testing.T) {
	assert.Equal(t, []string{
		"Bill Evans Autumn Leaves official audio",
		"Bill Evans Autumn Leaves official",
		"Bill Evans Autumn Leaves",
	}, QueryVariants("Autumn Leaves", "Bill Evans"))
}

func TestResolver_FirstQueryHitShortCircuits(t *testing.T) {
	f := &fakeSearcher{answers: map[string][]string{
		"Bill Evans Autumn Leaves official audio": {"abc123", "zzz"},
		"Bill Evans Autumn Leaves official":       {"other"},
	}}

	id, err := newTestResolver(f).Resolve(context.Background(), "Autumn Leaves", "Bill Evans")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Len(t, f.calls, 1)
}

func TestResolver_FallsThroughErrorsAndEmpties(t *testing.T) {
	f := &fakeSearcher{
		errs: map[string]error{
			"Nujabes Aruarian Dance official audio": errors.New("quota exceeded"),
		},
		answers: map[string][]string{
			"Nujabes Aruarian Dance official": {},
			"Nujabes Aruarian Dance":          {"nj001"},
		},
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "attempts"}, []string{"outcome"})

	id, err := newTestResolver(f).WithMetrics(attempts).Resolve(context.Background(), "Aruarian Dance", "Nujabes")
	require.NoError(t, err)
	assert.Equal(t, "nj001", id)
	assert.Len(t, f.calls, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(attempts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(attempts.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(attempts.WithLabelValues("hit")))
}

func TestResolver_NotFoundAfterAllQueries(t *testing.T) {
	f := &fakeSearcher{}

	_, err := newTestResolver(f).Resolve(context.Background(), "Nothing", "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, f.calls, 3)
}

func TestResolver_CancelledContext(t *testing.T) {
	f := &fakeSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(f).Resolve(ctx, "Autumn Leaves", "Bill Evans")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.calls)
}

func TestResolver_NilSearcher(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrSearcherNil)
}
