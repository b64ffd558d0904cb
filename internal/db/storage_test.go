//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneropulse/xvb-arbiter/internal/db"
	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

func TestHistoryRetention(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	points := []model.HistoryPointDocument{
		{Timestamp: base.Add(-3 * time.Hour), TotalHR: 8000, P2PoolHR: 8000},
		{Timestamp: base.Add(-90 * time.Minute), TotalHR: 9000, XvbHR: 9000},
		{Timestamp: base.Add(-10 * time.Minute), TotalHR: 10000, P2PoolHR: 10000},
	}
	for i := range points {
		require.NoError(t, testDB.InsertHistoryPoint(ctx, &points[i]))
	}

	deleted, err := testDB.PruneHistoryBefore(ctx, base.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	history, err := testDB.GetHistorySince(ctx, base.Add(-4*time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	// sorted oldest first
	assert.Equal(t, 9000.0, history[0].TotalHR)
	assert.Equal(t, 10000.0, history[1].TotalHR)
	// attribution columns survive the round trip
	assert.Equal(t, 9000.0, history[0].XvbHR)
	assert.Zero(t, history[0].P2PoolHR)
}

func TestWorkersUpsertAndPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rig1 := createWorker(t)
	rig1.Name = "rig1"
	rig1.IP = "10.0.0.1"
	rig1.LastSeen = now

	workers := []model.WorkerDocument{
		rig1,
		{Name: "rig2", IP: "10.0.0.2", LastSeen: now.Add(-time.Hour)},
	}
	require.NoError(t, testDB.UpsertWorkers(ctx, workers))

	// upsert with the same name replaces, never duplicates
	require.NoError(t, testDB.UpsertWorkers(ctx, []model.WorkerDocument{
		{Name: "rig1", IP: "10.0.0.99", LastSeen: now},
	}))

	got, err := testDB.GetWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byName := make(map[string]model.WorkerDocument)
	for _, w := range got {
		byName[w.Name] = w
	}
	assert.Equal(t, "10.0.0.99", byName["rig1"].IP)

	deleted, err := testDB.PruneWorkersBefore(ctx, now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	got, err = testDB.GetWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rig1", got[0].Name)
}

func createWorker(t *testing.T) model.WorkerDocument {
	var worker model.WorkerDocument
	err := gofakeit.Struct(&worker)
	require.NoError(t, err)

	return worker
}

func TestDonationStatsPartialUpdate(t *testing.T) {
	ctx := context.Background()

	_, err := testDB.GetDonationStats(ctx)
	require.True(t, db.IsNotFoundError(err), "fresh database has no stats document")

	require.NoError(t, testDB.UpdateDonationFields(ctx, map[string]interface{}{
		"mode":         "P2POOL",
		"current_mode": "P2POOL",
		"avg_1h":       9500.0,
		"avg_24h":      10100.0,
		"fail_count":   1,
		"last_update":  int64(1717243200),
	}))

	stats, err := testDB.GetDonationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9500.0, stats.Avg1h)
	assert.Equal(t, 1, stats.FailCount)

	// a mode-only update must leave the numeric fields alone
	require.NoError(t, testDB.UpdateDonationFields(ctx, map[string]interface{}{
		"mode":         "XVB",
		"current_mode": "XVB (Split)",
	}))

	stats, err = testDB.GetDonationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "XVB", stats.Mode)
	assert.Equal(t, "XVB (Split)", stats.CurrentMode)
	assert.Equal(t, 9500.0, stats.Avg1h)
	assert.Equal(t, int64(1717243200), stats.LastUpdate)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, err := testDB.GetSnapshot(ctx)
	require.True(t, db.IsNotFoundError(err))

	blob := []byte(`{"timestamp":"2025-06-01T12:00:00Z","current_hashrate":12000}`)
	require.NoError(t, testDB.SaveSnapshot(ctx, blob))

	got, err := testDB.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	// overwrite keeps a single document
	blob2 := []byte(`{"timestamp":"2025-06-01T12:00:30Z","current_hashrate":13000}`)
	require.NoError(t, testDB.SaveSnapshot(ctx, blob2))

	got, err = testDB.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, blob2, got)
}
