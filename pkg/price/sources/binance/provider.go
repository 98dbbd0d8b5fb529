package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chainprice/pkg/httpc"
	"chainprice/pkg/price"
)

const (
	defaultBaseURL = "https://data.binance.com/api/v3"
	// quoteSuffix fixes the quote currency of every requested pair.
	quoteSuffix = "USDT"
	// candleWindow is the span of the single requested candle.
	candleWindow = time.Minute
	// closePriceIndex is the position of the close price within a kline
	// record as returned by the endpoint.
	closePriceIndex = 4
)

// Provider resolves spot close prices from the Binance kline endpoint.
type Provider struct {
	name    string
	baseURL string
	client  *httpc.Client
}

// Option customises the provider.
type Option func(*Provider)

// WithBaseURL overrides the Binance API root.
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

// NewProvider constructs a Binance spot price provider.
func NewProvider(opts ...Option) *Provider {
	provider := &Provider{
		name:    "binance",
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.client == nil {
		provider.client = httpc.NewClient()
	}
	return provider
}

func init() {
	price.RegisterSource("binance", func(name string, cfg *price.SourceConfig) (any, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithClient(httpc.NewClient(httpc.WithTimeout(cfg.HTTPTimeout))))
		}
		provider := NewProvider(opts...)
		provider.name = name
		return provider, nil
	})
}

// SourceName identifies the provider in quote audit records.
func (p *Provider) SourceName() string { return p.name }

// SpotPrice implements price.SpotPriceProvider. It requests the one-minute
// candle starting at the supplied time and returns its close price. Every
// failure is normalized into *price.MissingDataError.
func (p *Provider) SpotPrice(ctx context.Context, symbol string, at time.Time) (float64, error) {
	pair := strings.ToUpper(symbol) + quoteSuffix
	closePrice, err := p.fetchClose(ctx, pair, at)
	if err != nil {
		return 0, &price.MissingDataError{Cause: err}
	}
	return closePrice, nil
}

func (p *Provider) fetchClose(ctx context.Context, pair string, at time.Time) (float64, error) {
	query := url.Values{}
	query.Set("symbol", pair)
	query.Set("interval", "1m")
	query.Set("startTime", strconv.FormatInt(at.UnixMilli(), 10))
	query.Set("endTime", strconv.FormatInt(at.Add(candleWindow).UnixMilli(), 10))
	query.Set("limit", "1")

	var candles [][]any
	if err := p.client.GetJSON(ctx, p.baseURL+"/klines", query, &candles); err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("binance: no candle for %s at %s", pair, at.UTC().Format(time.RFC3339))
	}
	candle := candles[0]
	if len(candle) <= closePriceIndex {
		return 0, fmt.Errorf("binance: candle for %s has only %d fields", pair, len(candle))
	}
	raw, ok := candle[closePriceIndex].(string)
	if !ok {
		return 0, fmt.Errorf("binance: close price field is %T, want string", candle[closePriceIndex])
	}
	closePrice, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse close price %q: %w", raw, err)
	}
	return closePrice, nil
}
