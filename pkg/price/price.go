package price

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractPriceProvider resolves the USD price of a token contract at or
// near a point in time from a historical market data source.
type ContractPriceProvider interface {
	// ContractPriceUSD returns the price in USD of the token contract closest
	// to (and no later than) the supplied time.
	ContractPriceUSD(ctx context.Context, contract common.Address, at time.Time, chain Blockchain) (float64, error)
}

// TransactionValueProvider resolves the realized USD value of a single
// on-chain swap transaction from an indexed dataset.
type TransactionValueProvider interface {
	TransactionValueUSD(ctx context.Context, txHash common.Hash, chain Blockchain) (float64, error)
}

// SpotPriceProvider resolves a centralized exchange close price for a token
// symbol within a one-minute window starting at the supplied time.
type SpotPriceProvider interface {
	SpotPrice(ctx context.Context, symbol string, at time.Time) (float64, error)
}

// QuoteKind labels how a quote was resolved.
type QuoteKind string

const (
	QuoteContract QuoteKind = "contract"
	QuoteSwap     QuoteKind = "swap"
	QuoteSpot     QuoteKind = "spot"
)

// Quote is a resolved price observation handed to audit sinks.
type Quote struct {
	Kind       QuoteKind  // how the value was resolved
	Source     string     // resolver name, e.g. "coingecko"
	Identifier string     // contract address, tx hash or symbol
	Chain      Blockchain // empty for CEX spot quotes
	At         time.Time  // the caller-requested point in time
	ValueUSD   float64
	ResolvedAt time.Time
}

// Persistence hooks allow the facade to record resolved quotes in external
// stores. Sinks are write-only: recorded quotes are never read back to
// answer lookups.
type Persistence interface {
	RecordQuote(ctx context.Context, quote Quote) error
}
