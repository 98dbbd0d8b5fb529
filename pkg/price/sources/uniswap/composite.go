package uniswap

import (
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"

	"chainprice/pkg/price"
)

// Composite tries subgraph versions in declared order, newest first, and
// surfaces the last attempt's failure when every version is exhausted.
type Composite struct {
	name      string
	providers []*Provider
}

// NewComposite builds a fallback chain from the supplied providers. Order
// matters: pass the newest protocol version first.
func NewComposite(providers ...*Provider) *Composite {
	return &Composite{name: "uniswap", providers: providers}
}

// DefaultComposite chains the hosted v3 and v2 subgraphs.
func DefaultComposite() *Composite {
	return NewComposite(
		NewProvider("v3", defaultV3SubgraphURL),
		NewProvider("v2", defaultV2SubgraphURL),
	)
}

func init() {
	price.RegisterSource("uniswap", func(name string, cfg *price.SourceConfig) (any, error) {
		if len(cfg.Versions) == 0 {
			composite := DefaultComposite()
			composite.name = name
			return composite, nil
		}
		opts := []Option{}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		providers := make([]*Provider, 0, len(cfg.Versions))
		for _, version := range cfg.Versions {
			providers = append(providers, NewProvider(version.Name, version.URL, opts...))
		}
		composite := NewComposite(providers...)
		composite.name = name
		return composite, nil
	})
}

// SourceName identifies the composite in quote audit records.
func (c *Composite) SourceName() string { return c.name }

// TransactionValueUSD implements price.TransactionValueProvider by walking
// the version chain.
func (c *Composite) TransactionValueUSD(ctx context.Context, txHash common.Hash, chain price.Blockchain) (float64, error) {
	if len(c.providers) == 0 {
		return 0, &price.UsdValueError{Cause: errors.New("no subgraph versions configured")}
	}
	var lastErr error
	for i, provider := range c.providers {
		value, err := provider.TransactionValueUSD(ctx, txHash, chain)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if i < len(c.providers)-1 {
			logx.WithContext(ctx).Debugf("uniswap: %s lookup failed for tx %s, falling back: %v",
				provider.Version(), txHash.Hex(), err)
		}
	}
	return 0, lastErr
}
