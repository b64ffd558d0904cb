package proxyclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/clients/client"
	"github.com/moneropulse/xvb-arbiter/internal/config"
)

const (
	summaryPath = "/1/summary"
	workersPath = "/1/workers"
	configPath  = "/1/config"
)

// ProxyClient talks to the xmrig-proxy HTTP API that fronts the fleet.
type ProxyClient struct {
	httpClient *http.Client
	cfg        *config.ProxyConfig
}

func NewProxyClient(cfg *config.ProxyConfig) *ProxyClient {
	return &ProxyClient{
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

func (c *ProxyClient) GetBaseURL() string {
	return c.cfg.BaseURL()
}

func (c *ProxyClient) GetDefaultRequestTimeout() time.Duration {
	return c.cfg.Timeout
}

func (c *ProxyClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *ProxyClient) authHeaders() map[string]string {
	if c.cfg.AccessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.cfg.AccessToken}
}

func (c *ProxyClient) GetSummary(ctx context.Context) (*Summary, error) {
	type empty struct{}

	callForSummary := func() (*Summary, error) {
		opts := &client.HttpClientOptions{
			Path:         summaryPath,
			TemplatePath: summaryPath,
			Headers:      c.authHeaders(),
		}
		return client.SendRequest[empty, Summary](ctx, c, http.MethodGet, opts, nil)
	}

	summary, err := clientCallWithRetry(ctx, callForSummary, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get proxy summary: %w", err)
	}
	return summary, nil
}

func (c *ProxyClient) GetWorkers(ctx context.Context) (*WorkersResponse, error) {
	type empty struct{}

	callForWorkers := func() (*WorkersResponse, error) {
		opts := &client.HttpClientOptions{
			Path:         workersPath,
			TemplatePath: workersPath,
			Headers:      c.authHeaders(),
		}
		return client.SendRequest[empty, WorkersResponse](ctx, c, http.MethodGet, opts, nil)
	}

	workers, err := clientCallWithRetry(ctx, callForWorkers, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get proxy workers: %w", err)
	}
	return workers, nil
}

// GetConfig returns the full proxy configuration as a generic document, so
// an update can replace the pool list without disturbing unrelated settings.
func (c *ProxyClient) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	type empty struct{}

	callForConfig := func() (*map[string]interface{}, error) {
		opts := &client.HttpClientOptions{
			Path:         configPath,
			TemplatePath: configPath,
			Headers:      c.authHeaders(),
		}
		return client.SendRequest[empty, map[string]interface{}](ctx, c, http.MethodGet, opts, nil)
	}

	cfg, err := clientCallWithRetry(ctx, callForConfig, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get proxy config: %w", err)
	}
	return *cfg, nil
}

func (c *ProxyClient) UpdateConfig(ctx context.Context, proxyCfg map[string]interface{}) error {
	type empty struct{}

	callForUpdate := func() (*empty, error) {
		opts := &client.HttpClientOptions{
			Path:         configPath,
			TemplatePath: configPath,
			Headers:      c.authHeaders(),
		}
		return client.SendRequest[map[string]interface{}, empty](ctx, c, http.MethodPut, opts, &proxyCfg)
	}

	if _, err := clientCallWithRetry(ctx, callForUpdate, c.cfg); err != nil {
		return fmt.Errorf("failed to update proxy config: %w", err)
	}
	return nil
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[*T],
	cfg *config.ProxyConfig,
) (*T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the proxy API")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
