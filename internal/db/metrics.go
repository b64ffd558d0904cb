package db

import (
	"context"
	"time"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
)

// DbWithMetrics decorates a DbInterface with per-method latency metrics.
type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	start := time.Now()
	err := f()
	metrics.RecordDbLatency(time.Since(start), method, err != nil)
	return err
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) InsertHistoryPoint(ctx context.Context, point *model.HistoryPointDocument) error {
	return d.run("InsertHistoryPoint", func() error {
		return d.db.InsertHistoryPoint(ctx, point)
	})
}

func (d *DbWithMetrics) PruneHistoryBefore(ctx context.Context, cutoff time.Time) (pruned int64, err error) {
	//nolint:errcheck
	d.run("PruneHistoryBefore", func() error {
		pruned, err = d.db.PruneHistoryBefore(ctx, cutoff)
		return err
	})

	return
}

func (d *DbWithMetrics) GetHistorySince(ctx context.Context, cutoff time.Time) (points []model.HistoryPointDocument, err error) {
	//nolint:errcheck
	d.run("GetHistorySince", func() error {
		points, err = d.db.GetHistorySince(ctx, cutoff)
		return err
	})

	return
}

func (d *DbWithMetrics) UpsertWorkers(ctx context.Context, workers []model.WorkerDocument) error {
	return d.run("UpsertWorkers", func() error {
		return d.db.UpsertWorkers(ctx, workers)
	})
}

func (d *DbWithMetrics) PruneWorkersBefore(ctx context.Context, cutoff time.Time) (pruned int64, err error) {
	//nolint:errcheck
	d.run("PruneWorkersBefore", func() error {
		pruned, err = d.db.PruneWorkersBefore(ctx, cutoff)
		return err
	})

	return
}

func (d *DbWithMetrics) GetWorkers(ctx context.Context) (workers []model.WorkerDocument, err error) {
	//nolint:errcheck
	d.run("GetWorkers", func() error {
		workers, err = d.db.GetWorkers(ctx)
		return err
	})

	return
}

func (d *DbWithMetrics) GetDonationStats(ctx context.Context) (stats *model.DonationStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetDonationStats", func() error {
		stats, err = d.db.GetDonationStats(ctx)
		return err
	})

	return
}

func (d *DbWithMetrics) UpdateDonationFields(ctx context.Context, fields map[string]interface{}) error {
	return d.run("UpdateDonationFields", func() error {
		return d.db.UpdateDonationFields(ctx, fields)
	})
}

func (d *DbWithMetrics) SaveSnapshot(ctx context.Context, blob []byte) error {
	return d.run("SaveSnapshot", func() error {
		return d.db.SaveSnapshot(ctx, blob)
	})
}

func (d *DbWithMetrics) GetSnapshot(ctx context.Context) (blob []byte, err error) {
	//nolint:errcheck
	d.run("GetSnapshot", func() error {
		blob, err = d.db.GetSnapshot(ctx)
		return err
	})

	return
}
