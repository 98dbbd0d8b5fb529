package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"

	"chainprice/pkg/httpc"
	"chainprice/pkg/price"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultBackoff = 3 * time.Second

	// lookbackWindow anchors the requested series at the target time; the
	// last returned point is therefore the closest one.
	lookbackWindow = 24 * time.Hour
	// stalenessWarn is the gap beyond which the returned point is flagged as
	// a data quality caveat. The price is still returned.
	stalenessWarn = time.Hour

	apiKeyHeader = "x-cg-demo-api-key"
)

// chainSlugs maps every supported chain to its CoinGecko asset platform id.
// Must stay total over price.Blockchains.
var chainSlugs = map[price.Blockchain]string{
	price.Ethereum: "ethereum",
}

// Provider resolves historical contract prices from the CoinGecko market
// chart range endpoint.
type Provider struct {
	name    string
	baseURL string
	client  *httpc.Client
	apiKey  string
	backoff time.Duration
	// maxRetries bounds rate-limit retries; zero retries until the context
	// is cancelled.
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customises the provider.
type Option func(*Provider)

// WithBaseURL overrides the CoinGecko API root.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithClient injects a custom transport client.
func WithClient(client *httpc.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithBackoff overrides the fixed sleep applied after a rate-limit response.
func WithBackoff(backoff time.Duration) Option {
	return func(p *Provider) {
		if backoff > 0 {
			p.backoff = backoff
		}
	}
}

// WithMaxRetries bounds the rate-limit retry loop. Zero means unbounded.
func WithMaxRetries(max int) Option {
	return func(p *Provider) {
		if max >= 0 {
			p.maxRetries = max
		}
	}
}

// WithAPIKey attaches the aggregator API key to every request. Ignored when
// a custom transport client is injected.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = strings.TrimSpace(key)
	}
}

// NewProvider constructs a CoinGecko contract price provider.
func NewProvider(opts ...Option) *Provider {
	provider := &Provider{
		name:    "coingecko",
		baseURL: defaultBaseURL,
		backoff: defaultBackoff,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.client == nil {
		clientOpts := []httpc.Option{}
		if provider.apiKey != "" {
			clientOpts = append(clientOpts, httpc.WithHeader(apiKeyHeader, provider.apiKey))
		}
		provider.client = httpc.NewClient(clientOpts...)
	}
	return provider
}

func init() {
	price.RegisterSource("coingecko", func(name string, cfg *price.SourceConfig) (any, error) {
		opts := []Option{}
		clientOpts := []httpc.Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Backoff > 0 {
			opts = append(opts, WithBackoff(cfg.Backoff))
		}
		if cfg.MaxRetries > 0 {
			opts = append(opts, WithMaxRetries(cfg.MaxRetries))
		}
		if cfg.HTTPTimeout > 0 {
			clientOpts = append(clientOpts, httpc.WithTimeout(cfg.HTTPTimeout))
		}
		if cfg.APIKey != "" {
			clientOpts = append(clientOpts, httpc.WithHeader(apiKeyHeader, cfg.APIKey))
		}
		if len(clientOpts) > 0 {
			opts = append(opts, WithClient(httpc.NewClient(clientOpts...)))
		}
		provider := NewProvider(opts...)
		provider.name = name
		return provider, nil
	})
}

// SourceName identifies the provider in quote audit records.
func (p *Provider) SourceName() string { return p.name }

type marketChartResponse struct {
	// Prices is a series of [timestamp_ms, price] pairs ordered by time.
	Prices [][2]float64 `json:"prices"`
}

// ContractPriceUSD implements price.ContractPriceProvider. It requests the
// 24h window ending at the target time and returns the last point of the
// series.
func (p *Provider) ContractPriceUSD(ctx context.Context, contract common.Address, at time.Time, chain price.Blockchain) (float64, error) {
	slug, ok := chainSlugs[chain]
	if !ok {
		return 0, &price.UnsupportedBlockchainError{Chain: chain}
	}

	endpoint := fmt.Sprintf("%s/coins/%s/contract/%s/market_chart/range",
		p.baseURL, slug, strings.ToLower(contract.Hex()))
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("from", strconv.FormatInt(at.Add(-lookbackWindow).Unix(), 10))
	query.Set("to", strconv.FormatInt(at.Unix(), 10))

	var payload marketChartResponse
	if err := p.getWithRetry(ctx, contract, endpoint, query, &payload); err != nil {
		return 0, err
	}
	if len(payload.Prices) == 0 {
		return 0, &price.MissingDataError{}
	}

	last := payload.Prices[len(payload.Prices)-1]
	pointTime := time.UnixMilli(int64(last[0]))
	if drift := absDuration(pointTime.Sub(at)); drift > stalenessWarn {
		logx.WithContext(ctx).Infof("coingecko: closest price point for %s is %s away from requested time",
			contract.Hex(), drift)
	}
	return last[1], nil
}

// getWithRetry performs the request, sleeping and retrying on rate-limit
// responses. Any other non-success status fails immediately.
func (p *Provider) getWithRetry(ctx context.Context, contract common.Address, endpoint string, query url.Values, result any) error {
	retries := 0
	for {
		err := p.client.GetJSON(ctx, endpoint, query, result)
		if err == nil {
			return nil
		}
		if httpc.IsRateLimited(err) {
			retries++
			if p.maxRetries > 0 && retries > p.maxRetries {
				return &price.TokenPriceError{Address: contract, Status: http.StatusTooManyRequests}
			}
			if sleepErr := p.sleep(ctx, p.backoff); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		var statusErr *httpc.StatusError
		if errors.As(err, &statusErr) {
			return &price.TokenPriceError{Address: contract, Status: statusErr.Code}
		}
		return err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
