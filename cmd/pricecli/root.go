package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"chainprice/internal/cli"
	"chainprice/internal/config"
	quotespersist "chainprice/internal/persistence/quotes"
	"chainprice/pkg/confkit"
	"chainprice/pkg/journal"
	"chainprice/pkg/price"
	"chainprice/pkg/price/sources/binance"
	"chainprice/pkg/price/sources/coingecko"
	"chainprice/pkg/price/sources/uniswap"
)

var (
	configFile string
	atFlag     string
	chainFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "pricecli",
	Short: "Resolve USD prices for tokens and transactions",
	Long: `pricecli resolves USD-denominated prices for blockchain tokens and
transactions from CoinGecko, the Uniswap subgraphs and Binance.

Three independent lookups are supported:

	1. contract: the historical price of a token contract at a point in
	   time, from the aggregator's market chart.

	2. tx: the realized USD value of a swap transaction, from the DEX
	   subgraphs (newest protocol version first).

	3. spot: the CEX close price of a symbol within a one-minute window.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "etc/pricecli.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&atFlag, "at", "", "point in time, RFC3339 or unix seconds (default now)")
	rootCmd.PersistentFlags().StringVar(&chainFlag, "chain", string(price.Ethereum), "blockchain to resolve against")
}

func loadConfig() *config.Config {
	path := configFile
	if _, err := os.Stat(path); err != nil {
		if projectPath, perr := confkit.ProjectPath(path); perr == nil {
			path = projectPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		// Missing config is not fatal; defaults cover every source.
		return &config.Config{Env: "dev"}
	}
	cli.LogConfigSummary(cfg)
	return cfg
}

func buildFacade(cfg *config.Config) (*price.Facade, error) {
	opts := []price.FacadeOption{}
	if dsn := strings.TrimSpace(cfg.Postgres.DSN); dsn != "" {
		if sink := quotespersist.NewService(sqlx.NewSqlConn("pgx", dsn)); sink != nil {
			opts = append(opts, price.WithPersistence(sink))
		}
	}
	if dir := strings.TrimSpace(cfg.Journal.Dir); dir != "" {
		writer := journal.NewWriter(dir, journal.WithEncoding(journal.ParseEncoding(cfg.Journal.Encoding)))
		opts = append(opts, price.WithPersistence(journal.NewSink(writer)))
	}

	if cfg.Price.Value != nil {
		return cfg.Price.Value.BuildFacade(opts...)
	}

	opts = append(opts,
		price.WithContractProvider(coingecko.NewProvider(coingecko.WithAPIKey(cfg.CoingeckoAPIKey))),
		price.WithTransactionProvider(uniswap.DefaultComposite()),
		price.WithSpotProvider(binance.NewProvider()),
	)
	return price.NewFacade(opts...), nil
}

func parseAt() (time.Time, error) {
	raw := strings.TrimSpace(atFlag)
	if raw == "" {
		return time.Now(), nil
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(seconds, 0), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: %w", raw, err)
	}
	return at, nil
}

func parseChain() (price.Blockchain, error) {
	chain := price.Blockchain(strings.ToLower(strings.TrimSpace(chainFlag)))
	if !chain.Supported() {
		return "", &price.UnsupportedBlockchainError{Chain: chain}
	}
	return chain, nil
}
