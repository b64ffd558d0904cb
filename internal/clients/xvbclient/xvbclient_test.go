package xvbclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init(9992)
	os.Exit(m.Run())
}

const samplePage = `<html><body>
<pre>
Raffle Bonus History for 44Af...
Player Stats
Fail Count: 2
Wins: 17
1hr avg: 10.51 kH/s
24hr avg: 10.02 kH/s
</pre>
</body></html>`

func TestParseStats(t *testing.T) {
	t.Parallel()

	stats, err := ParseStats(samplePage)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FailCount)
	assert.Equal(t, 10510.0, stats.Avg1h)
	assert.Equal(t, 10020.0, stats.Avg24h)
}

func TestParseStatsUnitVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		expected float64
	}{
		{"plain hs", "Fail Count: 0\n1hr avg: 950 H/s", 950},
		{"no unit", "Fail Count: 0\n1hr avg: 950", 950},
		{"megahash", "Fail Count: 0\n1hr avg: 1.2 MH/s", 1_200_000},
		{"case insensitive", "fail count: 0\n1HR AVG: 2 KH/s", 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := ParseStats(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stats.Avg1h)
		})
	}
}

func TestParseStatsMissingAverages(t *testing.T) {
	t.Parallel()

	// A fresh address shows the fail counter before any average exists.
	stats, err := ParseStats("Fail Count: 0")
	require.NoError(t, err)
	assert.Zero(t, stats.Avg1h)
	assert.Zero(t, stats.Avg24h)
}

func TestParseStatsUnrecognizedPage(t *testing.T) {
	t.Parallel()

	_, err := ParseStats("<html><body>internal error</body></html>")
	require.Error(t, err)
}

func TestGetStatsQueriesWalletAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "44AfWallet", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	cfg := &config.XvbConfig{
		Endpoint:      srv.URL,
		Timeout:       time.Second,
		MaxRetryTimes: 1,
		RetryInterval: 10 * time.Millisecond,
		SyncEvery:     10,
	}
	client := NewXvbClient(cfg, "44AfWallet")

	stats, err := client.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FailCount)
}

func TestGetStatsRetriesServerErrors(t *testing.T) {
	requestCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	cfg := &config.XvbConfig{
		Endpoint:      srv.URL,
		Timeout:       time.Second,
		MaxRetryTimes: 3,
		RetryInterval: 10 * time.Millisecond,
		SyncEvery:     10,
	}
	client := NewXvbClient(cfg, "44AfWallet")

	stats, err := client.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requestCount)
	assert.Equal(t, 10020.0, stats.Avg24h)
}
