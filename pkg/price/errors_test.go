package price

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestMissingDataError(t *testing.T) {
	bare := &MissingDataError{}
	require.Equal(t, "price: missing data", bare.Error())
	require.True(t, IsMissingData(bare))

	cause := errors.New("no candle")
	wrapped := &MissingDataError{Cause: cause}
	require.Contains(t, wrapped.Error(), "no candle")
	require.ErrorIs(t, wrapped, cause)
	require.True(t, IsMissingData(fmt.Errorf("outer: %w", wrapped)))
	require.False(t, IsMissingData(errors.New("other")))
}

func TestTokenPriceError(t *testing.T) {
	addr := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	err := &TokenPriceError{Address: addr, Status: 404}
	require.Contains(t, err.Error(), addr.Hex())
	require.Contains(t, err.Error(), "404")
}

func TestUsdValueErrorUnwraps(t *testing.T) {
	cause := &MissingDataError{}
	err := &UsdValueError{Cause: cause}
	require.True(t, IsMissingData(err))

	var usdErr *UsdValueError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &usdErr)
	require.Same(t, cause, usdErr.Cause)
}
