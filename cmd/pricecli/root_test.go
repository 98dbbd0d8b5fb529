package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chainprice/internal/config"
	"chainprice/pkg/price"
)

func TestParseAt(t *testing.T) {
	atFlag = ""
	at, err := parseAt()
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), at, time.Minute)

	atFlag = "1700000000"
	at, err = parseAt()
	require.NoError(t, err)
	require.Equal(t, time.Unix(1_700_000_000, 0), at)

	atFlag = "2023-11-14T22:13:20Z"
	at, err = parseAt()
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), at.UTC())

	atFlag = "yesterday"
	_, err = parseAt()
	require.Error(t, err)
}

func TestParseChain(t *testing.T) {
	chainFlag = "Ethereum"
	chain, err := parseChain()
	require.NoError(t, err)
	require.Equal(t, price.Ethereum, chain)

	chainFlag = "solana"
	_, err = parseChain()
	var unsupported *price.UnsupportedBlockchainError
	require.ErrorAs(t, err, &unsupported)
}

// Without a price section every role falls back to the built-in sources.
func TestBuildFacadeDefaults(t *testing.T) {
	facade, err := buildFacade(&config.Config{Env: "dev"})
	require.NoError(t, err)
	require.NotNil(t, facade)
}
