package price

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Every declared chain must have a native symbol; a gap in the table is a
// defect, not a runtime condition.
func TestNativeSymbolTotal(t *testing.T) {
	for _, chain := range Blockchains {
		symbol, err := chain.NativeSymbol()
		require.NoError(t, err, "chain %s has no native symbol", chain)
		require.NotEmpty(t, symbol)
	}
}

func TestNativeSymbolEthereum(t *testing.T) {
	symbol, err := Ethereum.NativeSymbol()
	require.NoError(t, err)
	require.Equal(t, "ETH", symbol)
}

func TestNativeSymbolUnknownChain(t *testing.T) {
	_, err := Blockchain("solana").NativeSymbol()
	var unsupported *UnsupportedBlockchainError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, Blockchain("solana"), unsupported.Chain)
}

func TestSupported(t *testing.T) {
	require.True(t, Ethereum.Supported())
	require.False(t, Blockchain("solana").Supported())
	require.False(t, Blockchain("").Supported())
}
