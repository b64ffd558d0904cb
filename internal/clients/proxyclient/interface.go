package proxyclient

import "context"

type ProxyInterface interface {
	GetSummary(ctx context.Context) (*Summary, error)
	GetWorkers(ctx context.Context) (*WorkersResponse, error)
	GetConfig(ctx context.Context) (map[string]interface{}, error)
	UpdateConfig(ctx context.Context, proxyCfg map[string]interface{}) error
}
