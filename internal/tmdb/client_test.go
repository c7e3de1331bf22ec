package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTMDB(t *testing.T, routes map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "key-123", r.URL.Query().Get("api_key"))
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path[:6] == "/find/" {
			assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, APIKey: "key-123"})
}

func TestLookup_Found(t *testing.T) {
	srv, calls := fakeTMDB(t, map[string]string{
		"/find/tt0133093": `{"movie_results":[{"id":603}]}`,
		"/movie/603":      `{"vote_average":8.2,"overview":"Neo learns the truth.","release_date":"1999-03-30"}`,
	})
	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "tt0133093")
	require.NoError(t, err)
	require.NotNil(t, meta.Rating)
	assert.InDelta(t, 8.2, *meta.Rating, 1e-9)
	assert.Equal(t, "Neo learns the truth.", meta.Summary)
	assert.Equal(t, "1999", meta.Year)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLookup_MissingDetailFields(t *testing.T) {
	srv, _ := fakeTMDB(t, map[string]string{
		"/find/tt1": `{"movie_results":[{"id":1}]}`,
		"/movie/1":  `{"release_date":""}`,
	})
	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "tt1")
	require.NoError(t, err)
	assert.Nil(t, meta.Rating)
	assert.Equal(t, NoSummary, meta.Summary)
	assert.Equal(t, UnknownYear, meta.Year)
}

func TestLookup_ZeroRatingIsKept(t *testing.T) {
	srv, _ := fakeTMDB(t, map[string]string{
		"/find/tt2": `{"movie_results":[{"id":2}]}`,
		"/movie/2":  `{"vote_average":0,"overview":"","release_date":"2031"}`,
	})
	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "tt2")
	require.NoError(t, err)
	require.NotNil(t, meta.Rating)
	assert.Zero(t, *meta.Rating)
	assert.Equal(t, NoSummary, meta.Summary)
	assert.Equal(t, "2031", meta.Year)
}

func TestLookup_NoResults(t *testing.T) {
	srv, calls := fakeTMDB(t, map[string]string{
		"/find/tt404": `{"movie_results":[]}`,
	})
	_, err := newTestClient(srv.URL).Lookup(context.Background(), "tt404")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLookup_ResultWithoutID(t *testing.T) {
	srv, _ := fakeTMDB(t, map[string]string{
		"/find/tt5": `{"movie_results":[{"title":"No id"}]}`,
	})
	_, err := newTestClient(srv.URL).Lookup(context.Background(), "tt5")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_StatusError(t *testing.T) {
	srv, _ := fakeTMDB(t, map[string]string{
		"/find/tt3": `{"movie_results":[{"id":3}]}`,
	})
	_, err := newTestClient(srv.URL).Lookup(context.Background(), "tt3")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "/movie/3", se.Path)
}

func TestLookup_BreakerOpensAfterFailures(t *testing.T) {
	srv, calls := fakeTMDB(t, map[string]string{})
	c := newTestClient(srv.URL)
	for i := 0; i < 10; i++ {
		_, err := c.Lookup(context.Background(), "tt9")
		require.Error(t, err)
	}
	before := calls.Load()
	_, err := c.Lookup(context.Background(), "tt9")
	require.Error(t, err)
	assert.Equal(t, before, calls.Load(), "open breaker must not reach the server")
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "1999", prefix("1999-03-30", 4))
	assert.Equal(t, "99", prefix("99", 4))
}
