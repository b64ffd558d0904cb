package xvbclient

import "context"

type XvbInterface interface {
	GetStats(ctx context.Context) (*Stats, error)
}
