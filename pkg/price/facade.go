package price

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"
)

// Facade bundles the configured resolvers behind three independent entry
// points. It performs no cross-validation between sources; contract, swap
// and spot lookups have different output semantics and stay separate.
type Facade struct {
	contract ContractPriceProvider
	swap     TransactionValueProvider
	spot     SpotPriceProvider
	sinks    []Persistence
	nowFn    func() time.Time
}

// FacadeOption customises a Facade.
type FacadeOption func(*Facade)

// WithContractProvider sets the historical contract price resolver.
func WithContractProvider(p ContractPriceProvider) FacadeOption {
	return func(f *Facade) {
		if p != nil {
			f.contract = p
		}
	}
}

// WithTransactionProvider sets the swap value resolver.
func WithTransactionProvider(p TransactionValueProvider) FacadeOption {
	return func(f *Facade) {
		if p != nil {
			f.swap = p
		}
	}
}

// WithSpotProvider sets the CEX spot price resolver.
func WithSpotProvider(p SpotPriceProvider) FacadeOption {
	return func(f *Facade) {
		if p != nil {
			f.spot = p
		}
	}
}

// WithPersistence appends a write-only quote sink. Sink failures are logged
// and never fail the lookup.
func WithPersistence(sink Persistence) FacadeOption {
	return func(f *Facade) {
		if sink != nil {
			f.sinks = append(f.sinks, sink)
		}
	}
}

// NewFacade constructs a facade from the supplied options.
func NewFacade(opts ...FacadeOption) *Facade {
	facade := &Facade{nowFn: time.Now}
	for _, opt := range opts {
		opt(facade)
	}
	return facade
}

// ContractPriceUSD resolves the historical USD price of a token contract.
func (f *Facade) ContractPriceUSD(ctx context.Context, contract common.Address, at time.Time, chain Blockchain) (float64, error) {
	if f.contract == nil {
		return 0, fmt.Errorf("price: no contract price provider configured")
	}
	value, err := f.contract.ContractPriceUSD(ctx, contract, at, chain)
	if err != nil {
		return 0, err
	}
	f.record(ctx, Quote{
		Kind:       QuoteContract,
		Source:     sourceName(f.contract),
		Identifier: contract.Hex(),
		Chain:      chain,
		At:         at,
		ValueUSD:   value,
		ResolvedAt: f.nowFn(),
	})
	return value, nil
}

// TransactionValueUSD resolves the realized USD value of a swap transaction.
func (f *Facade) TransactionValueUSD(ctx context.Context, txHash common.Hash, chain Blockchain) (float64, error) {
	if f.swap == nil {
		return 0, fmt.Errorf("price: no transaction value provider configured")
	}
	value, err := f.swap.TransactionValueUSD(ctx, txHash, chain)
	if err != nil {
		return 0, err
	}
	f.record(ctx, Quote{
		Kind:       QuoteSwap,
		Source:     sourceName(f.swap),
		Identifier: txHash.Hex(),
		Chain:      chain,
		At:         f.nowFn(),
		ValueUSD:   value,
		ResolvedAt: f.nowFn(),
	})
	return value, nil
}

// SpotPrice resolves a CEX close price for a token symbol.
func (f *Facade) SpotPrice(ctx context.Context, symbol string, at time.Time) (float64, error) {
	if f.spot == nil {
		return 0, fmt.Errorf("price: no spot price provider configured")
	}
	value, err := f.spot.SpotPrice(ctx, symbol, at)
	if err != nil {
		return 0, err
	}
	f.record(ctx, Quote{
		Kind:       QuoteSpot,
		Source:     sourceName(f.spot),
		Identifier: symbol,
		At:         at,
		ValueUSD:   value,
		ResolvedAt: f.nowFn(),
	})
	return value, nil
}

func (f *Facade) record(ctx context.Context, quote Quote) {
	for _, sink := range f.sinks {
		if err := sink.RecordQuote(ctx, quote); err != nil {
			logx.WithContext(ctx).Errorf("price: record quote %s/%s: %v", quote.Kind, quote.Identifier, err)
		}
	}
}

// namedSource is implemented by resolvers that expose a stable source name.
type namedSource interface {
	SourceName() string
}

func sourceName(v any) string {
	if named, ok := v.(namedSource); ok {
		return named.SourceName()
	}
	return fmt.Sprintf("%T", v)
}
