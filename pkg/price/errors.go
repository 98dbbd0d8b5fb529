package price

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MissingDataError reports a query that succeeded at the transport level but
// returned no usable data points. Cause is optional.
type MissingDataError struct {
	Cause error
}

func (e *MissingDataError) Error() string {
	if e.Cause == nil {
		return "price: missing data"
	}
	return fmt.Sprintf("price: missing data: %v", e.Cause)
}

func (e *MissingDataError) Unwrap() error { return e.Cause }

// IsMissingData reports whether err is (or wraps) a MissingDataError.
func IsMissingData(err error) bool {
	var missing *MissingDataError
	return errors.As(err, &missing)
}

// TokenPriceError reports a contract price lookup that hit a non-recoverable
// transport failure. It carries the token address and HTTP status for
// diagnostics.
type TokenPriceError struct {
	Address common.Address
	Status  int
}

func (e *TokenPriceError) Error() string {
	return fmt.Sprintf("price: can't find price for token %s (http status %d)", e.Address.Hex(), e.Status)
}

// UsdValueError reports a swap value lookup that failed to locate or parse
// the swap record. The underlying cause is always attached so callers can
// chain fallbacks without interpreting lower-level failures.
type UsdValueError struct {
	Cause error
}

func (e *UsdValueError) Error() string {
	return fmt.Sprintf("price: can't extract usd value: %v", e.Cause)
}

func (e *UsdValueError) Unwrap() error { return e.Cause }

// UnsupportedBlockchainError reports a chain that has no mapping in a
// resolver's internal table. This is a programming or configuration defect
// and is never retried.
type UnsupportedBlockchainError struct {
	Chain Blockchain
}

func (e *UnsupportedBlockchainError) Error() string {
	return fmt.Sprintf("price: unsupported blockchain %q", string(e.Chain))
}
