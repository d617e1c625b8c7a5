package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		Limiter:    rate.NewLimiter(rate.Inf, 1),
		BaseDelay:  time.Millisecond,
	})
}

const remoteDemandCSV = "pincode,latitude,longitude,F30_ROs\n560001,12.97,77.59,120\n"

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello world")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFetchTable_CSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exports/projections.csv", r.URL.Path)
		w.Write([]byte(remoteDemandCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	table, err := newTestFetcher().FetchTable(context.Background(), srv.URL+"/exports/projections.csv?token=x")
	require.NoError(t, err)
	assert.Equal(t, []string{"pincode", "latitude", "longitude", "F30_ROs"}, table.Header)
	require.Len(t, table.Rows, 1)

	points, stats, err := LoadDemand(table)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, "560001", points[0].ID)
}

func TestFetchTable_UnsupportedExtension(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestFetcher().FetchTable(context.Background(), srv.URL+"/data.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
	assert.Zero(t, calls.Load(), "no request for an unsupported type")
}

func TestOpenTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remoteDemandCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "demand.csv")
	require.NoError(t, os.WriteFile(local, []byte(remoteDemandCSV), 0o644))

	tests := []struct {
		name string
		src  string
	}{
		{name: "local", src: local},
		{name: "remote", src: srv.URL + "/demand.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := OpenTable(context.Background(), newTestFetcher(), tt.src)
			require.NoError(t, err)
			assert.Len(t, table.Rows, 1)
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.xlsx"))
	assert.True(t, IsRemote("http://example.com/a.csv"))
	assert.False(t, IsRemote("/tmp/a.csv"))
	assert.False(t, IsRemote("ftp://example.com/a.csv"))
}
