package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/salary-panel/pkg/utils"
)

const simpleTable = `<table><tr><th>Player</th></tr><tr><td>A</td></tr></table>`

func testFetcher(attempts, threshold int) *Fetcher {
	return NewFetcher(FetcherConfig{
		Attempts:         attempts,
		Timeout:          5 * time.Second,
		BreakerThreshold: threshold,
	})
}

func TestFetchTableRetriesUntilSuccess(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, simpleTable)
	}))
	defer srv.Close()

	table, err := testFetcher(3, 10).FetchTable(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Player"}, table.Header)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchTableGivesUpAfterAttempts(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testFetcher(3, 10).FetchTable(context.Background(), srv.URL)
	assert.ErrorIs(t, err, utils.ErrFetchFailed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchTableBreakerOpensPerHost(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := testFetcher(3, 1)
	_, err := f.FetchTable(context.Background(), srv.URL)
	assert.ErrorIs(t, err, utils.ErrFetchFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	host := srv.Listener.Addr().String()
	assert.Equal(t, gobreaker.StateOpen, f.breakers.State(host))
}

func TestFetchTableHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, simpleTable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(FetcherConfig{Attempts: 3, Delay: time.Second})
	_, err := f.FetchTable(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
