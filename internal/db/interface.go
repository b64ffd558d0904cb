package db

import (
	"context"
	"time"

	"github.com/moneropulse/xvb-arbiter/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	InsertHistoryPoint(ctx context.Context, point *model.HistoryPointDocument) error
	PruneHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
	GetHistorySince(ctx context.Context, cutoff time.Time) ([]model.HistoryPointDocument, error)

	UpsertWorkers(ctx context.Context, workers []model.WorkerDocument) error
	PruneWorkersBefore(ctx context.Context, cutoff time.Time) (int64, error)
	GetWorkers(ctx context.Context) ([]model.WorkerDocument, error)

	GetDonationStats(ctx context.Context) (*model.DonationStatsDocument, error)
	UpdateDonationFields(ctx context.Context, fields map[string]interface{}) error

	SaveSnapshot(ctx context.Context, blob []byte) error
	GetSnapshot(ctx context.Context) ([]byte, error)
}
