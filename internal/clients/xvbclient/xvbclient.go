package xvbclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
	"github.com/moneropulse/xvb-arbiter/internal/utils"
)

// Stats is the donation performance reported by the bonus history page.
type Stats struct {
	FailCount int
	Avg1h     float64
	Avg24h    float64
}

// The page is plain HTML with no stable markup; these patterns have
// outlived several cosmetic redesigns.
var (
	reFailCount = regexp.MustCompile(`(?i)Fail Count:\s*(\d+)`)
	reAvg1h     = regexp.MustCompile(`(?i)1hr avg:\s*([\d.]+)\s*([kKmMgG]?H/s)?`)
	reAvg24h    = regexp.MustCompile(`(?i)24hr avg:\s*([\d.]+)\s*([kKmMgG]?H/s)?`)
)

const maxBodySize = 1 << 20

// XvbClient scrapes the donation pool's per-address bonus history page.
type XvbClient struct {
	httpClient *http.Client
	cfg        *config.XvbConfig
	wallet     string
}

func NewXvbClient(cfg *config.XvbConfig, walletAddress string) *XvbClient {
	return &XvbClient{
		httpClient: &http.Client{},
		cfg:        cfg,
		wallet:     walletAddress,
	}
}

// GetStats fetches and parses the donation stats for the configured wallet.
func (c *XvbClient) GetStats(ctx context.Context) (*Stats, error) {
	callForStats := func() (*Stats, error) {
		return c.fetch(ctx)
	}

	stats, err := clientCallWithRetry(ctx, callForStats, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation stats: %w", err)
	}
	return stats, nil
}

func (c *XvbClient) fetch(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqURL := c.cfg.Endpoint + "?address=" + url.QueryEscape(c.wallet)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordClientRequestDuration(c.cfg.Endpoint, http.MethodGet, "/", 0, duration)
		return nil, fmt.Errorf("failed to fetch bonus history: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordClientRequestDuration(c.cfg.Endpoint, http.MethodGet, "/", resp.StatusCode, duration)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bonus history request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read bonus history response: %w", err)
	}

	return ParseStats(string(body))
}

// ParseStats extracts the donation stats from the raw HTML. It fails when
// neither the fail counter nor the hourly average is present, which means
// the page structure changed or the address is unknown to the pool.
func ParseStats(html string) (*Stats, error) {
	stats := &Stats{}

	failMatch := reFailCount.FindStringSubmatch(html)
	if failMatch != nil {
		count, err := strconv.Atoi(failMatch[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse fail count %q: %w", failMatch[1], err)
		}
		stats.FailCount = count
	}

	hr1Match := reAvg1h.FindStringSubmatch(html)
	if hr1Match != nil {
		stats.Avg1h = utils.ParseHashrate(hr1Match[1], hr1Match[2])
	}
	if hr24Match := reAvg24h.FindStringSubmatch(html); hr24Match != nil {
		stats.Avg24h = utils.ParseHashrate(hr24Match[1], hr24Match[2])
	}

	if failMatch == nil && hr1Match == nil {
		return nil, fmt.Errorf("critical stats not found in bonus history page")
	}
	return stats, nil
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[*T],
	cfg *config.XvbConfig,
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
				Msg("failed to fetch donation stats")
		}))
	if err != nil {
		return nil, err
	}
	return result, nil
}
