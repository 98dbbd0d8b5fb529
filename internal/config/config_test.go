package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "chainprice/pkg/price/sources/binance"
	_ "chainprice/pkg/price/sources/coingecko"
	_ "chainprice/pkg/price/sources/uniswap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadHydratesPriceSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price.yaml", `
contract: coingecko
swap: uniswap
spot: binance
sources:
  coingecko:
    type: coingecko
    api_key: ${TEST_CG_KEY}
    backoff: 3s
  uniswap:
    type: uniswap
  binance:
    type: binance
`)
	mainPath := writeFile(t, dir, "pricecli.yaml", `
Env: test
Journal:
  Dir: ./journal
  Encoding: msgpack
Price:
  File: price.yaml
`)
	t.Setenv("TEST_CG_KEY", "cg-test-key")

	cfg, err := Load(mainPath)
	require.NoError(t, err)
	require.True(t, cfg.IsTestEnv())
	require.Equal(t, "msgpack", cfg.Journal.Encoding)
	require.Equal(t, mainPath, cfg.Path())

	require.NotNil(t, cfg.Price.Value)
	require.Equal(t, "coingecko", cfg.Price.Value.Contract)
	require.Equal(t, "cg-test-key", cfg.Price.Value.Sources["coingecko"].APIKey)

	facade, err := cfg.Price.Value.BuildFacade()
	require.NoError(t, err)
	require.NotNil(t, facade)
}

func TestLoadAppliesEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "pricecli.yaml", "Env: dev\n")
	t.Setenv("COINGECKO_API_KEY", "from-env")
	t.Setenv("ETH_RPC_URL", "https://rpc.example.test")

	cfg, err := Load(mainPath)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.CoingeckoAPIKey)
	require.Equal(t, "https://rpc.example.test", cfg.EthRPCURL)
	require.False(t, cfg.IsTestEnv())
	require.Nil(t, cfg.Price.Value)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBrokenPriceSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "price.yaml", `
sources:
  broken:
    type: no-such-source
`)
	mainPath := writeFile(t, dir, "pricecli.yaml", `
Env: test
Price:
  File: price.yaml
`)

	_, err := Load(mainPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "hydrate price config")
}
