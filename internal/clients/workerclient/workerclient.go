package workerclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/clients/client"
	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

const (
	summaryPath = "/1/summary"
	configPath  = "/1/config"
)

// WorkerClient reaches individual xmrig workers on their HTTP API port.
// Workers announce themselves under a mining name like "hostname+50000"; the
// part before the plus doubles as the API bearer token and as the DNS name
// tried before the raw IP.
type WorkerClient struct {
	httpClient *http.Client
	cfg        *config.FleetConfig
}

func NewWorkerClient(cfg *config.FleetConfig) *WorkerClient {
	return &WorkerClient{
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// AuthToken derives the API bearer token from a worker's mining name.
func AuthToken(name string) string {
	token, _, _ := strings.Cut(name, "+")
	return strings.TrimSpace(token)
}

// Candidates returns the ordered address list tried for one worker:
// hostname, then the mDNS variant, then the raw IP. Empty and unusable
// entries are skipped.
func Candidates(name, ip string) []string {
	var candidates []string

	host := AuthToken(name)
	if host != "" {
		candidates = append(candidates, host, host+".local")
	}
	if ip != "" && ip != "0.0.0.0" {
		candidates = append(candidates, ip)
	}
	return candidates
}

// GetSummary polls one worker, walking its address candidates until one
// answers. The per-candidate timeout is short so a dead hostname does not
// stall the whole fleet poll.
func (c *WorkerClient) GetSummary(ctx context.Context, name, ip string) (*Summary, error) {
	type empty struct{}

	call := func(host string) (*Summary, error) {
		opts := &client.HttpClientOptions{
			Path:         summaryPath,
			TemplatePath: summaryPath,
			Headers:      c.authHeaders(name),
			Timeout:      c.cfg.Timeout,
		}
		return client.SendRequest[empty, Summary](ctx, c.target(host), http.MethodGet, opts, nil)
	}

	summary, err := firstResponding(ctx, name, ip, call)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from worker %q: %w", name, err)
	}
	return summary, nil
}

// GetConfig fetches a worker's full configuration as a generic document.
func (c *WorkerClient) GetConfig(ctx context.Context, name, ip string) (map[string]interface{}, error) {
	type empty struct{}

	call := func(host string) (*map[string]interface{}, error) {
		opts := &client.HttpClientOptions{
			Path:         configPath,
			TemplatePath: configPath,
			Headers:      c.authHeaders(name),
			Timeout:      c.cfg.Timeout,
		}
		return client.SendRequest[empty, map[string]interface{}](ctx, c.target(host), http.MethodGet, opts, nil)
	}

	cfg, err := firstResponding(ctx, name, ip, call)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from worker %q: %w", name, err)
	}
	return *cfg, nil
}

// UpdatePools repoints one worker at the given upstream list, preserving the
// rest of its configuration.
func (c *WorkerClient) UpdatePools(ctx context.Context, name, ip string, pools []types.PoolEntry) error {
	workerCfg, err := c.GetConfig(ctx, name, ip)
	if err != nil {
		return err
	}
	workerCfg["pools"] = pools

	type empty struct{}
	call := func(host string) (*empty, error) {
		opts := &client.HttpClientOptions{
			Path:         configPath,
			TemplatePath: configPath,
			Headers:      c.authHeaders(name),
			Timeout:      c.cfg.Timeout,
		}
		return client.SendRequest[map[string]interface{}, empty](ctx, c.target(host), http.MethodPut, opts, &workerCfg)
	}

	if _, err := firstResponding(ctx, name, ip, call); err != nil {
		return fmt.Errorf("failed to update pools on worker %q: %w", name, err)
	}
	return nil
}

func (c *WorkerClient) authHeaders(name string) map[string]string {
	token := AuthToken(name)
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// target binds the shared request helper to one address candidate.
func (c *WorkerClient) target(host string) client.HttpClient {
	return &workerTarget{
		baseURL: fmt.Sprintf("http://%s:%d", host, c.cfg.APIPort),
		timeout: c.cfg.Timeout,
		client:  c.httpClient,
	}
}

type workerTarget struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func (t *workerTarget) GetBaseURL() string                      { return t.baseURL }
func (t *workerTarget) GetDefaultRequestTimeout() time.Duration { return t.timeout }
func (t *workerTarget) GetHttpClient() *http.Client             { return t.client }

// firstResponding walks the candidate addresses and returns the first
// successful reply. Only the last error is propagated; earlier candidates
// failing is the expected case for workers known by IP only.
func firstResponding[T any](
	ctx context.Context,
	name, ip string,
	call func(host string) (*T, error),
) (*T, error) {
	candidates := Candidates(name, ip)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("worker %q has no usable address", name)
	}

	var lastErr error
	for _, host := range candidates {
		result, err := call(host)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Ctx(ctx).Debug().
			Str("worker", name).
			Str("candidate", host).
			Err(err).
			Msg("worker address candidate failed")
	}
	return nil, lastErr
}
