package workerclient

import (
	"context"

	"github.com/moneropulse/xvb-arbiter/internal/types"
)

type WorkerInterface interface {
	GetSummary(ctx context.Context, name, ip string) (*Summary, error)
	GetConfig(ctx context.Context, name, ip string) (map[string]interface{}, error)
	UpdatePools(ctx context.Context, name, ip string, pools []types.PoolEntry) error
}
