package collectors

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

func writeStatsFile(t *testing.T, dir string, rel string, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestCollector(t *testing.T) (*Collector, string, *time.Time) {
	t.Helper()
	dir := t.TempDir()
	c := New(&config.P2PoolConfig{StatsDir: dir})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, dir, &now
}

func TestDetectPoolVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		peers    []string
		expected types.PoolVariant
	}{
		{"main wins majority", []string{"1.2.3.4:37889", "5.6.7.8:37889", "9.9.9.9:37888"}, types.VariantMain},
		{"mini", []string{"1.2.3.4:37888"}, types.VariantMini},
		{"nano", []string{"1.2.3.4:37890", "2.3.4.5:37890"}, types.VariantNano},
		{"no peers", nil, types.VariantUnknown},
		{"unrecognized ports", []string{"1.2.3.4:18080"}, types.VariantUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPoolVariant(tt.peers))
		})
	}
}

func TestWindowDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6*time.Hour, WindowDuration(types.VariantMain))
	assert.Equal(t, 6*time.Hour, WindowDuration(types.VariantMini))
	assert.Equal(t, 18*time.Hour, WindowDuration(types.VariantNano))
	assert.Equal(t, 6*time.Hour, WindowDuration(types.VariantUnknown))
}

func TestSharesInWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	assert.Equal(t, 1, SharesInWindow(10, now.Add(-time.Hour), now, window))
	assert.Equal(t, 0, SharesInWindow(10, now.Add(-7*time.Hour), now, window))
	assert.Equal(t, 0, SharesInWindow(0, now.Add(-time.Hour), now, window))
	assert.Equal(t, 0, SharesInWindow(10, time.Time{}, now, window))
}

func TestPoolStatsAggregatesFiles(t *testing.T) {
	c, dir, now := newTestCollector(t)

	writeStatsFile(t, dir, "local/p2p", `{"peers":["1.2.3.4:37889"],"connections":8,"incoming_connections":2,"peer_list_size":120,"uptime":86400}`)
	writeStatsFile(t, dir, "pool/stats", `{"pool_statistics":{"hashRate":152000000,"miners":1200,"totalBlocksFound":42,"sidechainHeight":7000000,"sidechainDifficulty":190000000,"totalHashes":123456789}}`)
	lastShare := now.Add(-30 * time.Minute).Unix()
	writeStatsFile(t, dir, "local/stratum", `{"last_share_found_time":`+strconv.FormatInt(lastShare, 10)+`,"shares_found":17,"workers":[]}`)

	stats := c.PoolStats()
	assert.Equal(t, types.VariantMain, stats.Variant)
	assert.Equal(t, 152000000.0, stats.Hashrate)
	assert.Equal(t, int64(1200), stats.Miners)
	assert.Equal(t, int64(17), stats.SharesFound)
	assert.Equal(t, 1, stats.SharesInWindow)
}

func TestPoolStatsShareOutsideWindow(t *testing.T) {
	c, dir, now := newTestCollector(t)

	writeStatsFile(t, dir, "local/p2p", `{"peers":["1.2.3.4:37889"]}`)
	lastShare := now.Add(-7 * time.Hour).Unix()
	writeStatsFile(t, dir, "local/stratum", `{"last_share_found_time":`+strconv.FormatInt(lastShare, 10)+`,"shares_found":17}`)

	stats := c.PoolStats()
	assert.Equal(t, 0, stats.SharesInWindow)
}

func TestPoolStatsMissingFilesYieldZeroValues(t *testing.T) {
	c, _, _ := newTestCollector(t)

	stats := c.PoolStats()
	assert.Equal(t, types.VariantUnknown, stats.Variant)
	assert.Zero(t, stats.Hashrate)
	assert.Zero(t, stats.SharesInWindow)
}

func TestPoolStatsTolerantOfHalfWrittenFile(t *testing.T) {
	c, dir, _ := newTestCollector(t)

	writeStatsFile(t, dir, "pool/stats", `{"pool_statistics":{"hashRate":1520`)

	stats := c.PoolStats()
	assert.Zero(t, stats.Hashrate)
}

func TestNetworkStatsDerivesHashrateFromDifficulty(t *testing.T) {
	c, dir, _ := newTestCollector(t)

	writeStatsFile(t, dir, "network/stats", `{"difficulty":240000000000,"height":3200000,"reward":600000000000}`)

	stats := c.NetworkStats()
	assert.Equal(t, int64(3200000), stats.Height)
	assert.Equal(t, 2000000000.0, stats.Hashrate)
}

func TestStratumWorkersParsing(t *testing.T) {
	c, dir, _ := newTestCollector(t)

	writeStatsFile(t, dir, "local/stratum", `{
		"workers": [
			"192.168.1.10:54312,1716800000,123456,50000,rig1+50000,8",
			"192.168.1.11:54313,1716800001,98765,50000",
			" , , , , ",
			"192.168.1.12:54314,1716800002,55555,50000,rig3,4"
		]
	}`)

	workers := c.StratumWorkers()
	require.Len(t, workers, 3)

	assert.Equal(t, StratumWorker{IP: "192.168.1.10", Name: "rig1+50000"}, workers[0])
	assert.Equal(t, StratumWorker{IP: "192.168.1.11", Name: "miner"}, workers[1])
	assert.Equal(t, StratumWorker{IP: "192.168.1.12", Name: "rig3"}, workers[2])
}
