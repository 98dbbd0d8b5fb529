package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"chainprice/pkg/onchain"
)

var contractCmd = &cobra.Command{
	Use:   "contract <address>",
	Short: "Historical USD price of a token contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid contract address %q", args[0])
		}
		at, err := parseAt()
		if err != nil {
			return err
		}
		chain, err := parseChain()
		if err != nil {
			return err
		}
		facade, err := buildFacade(loadConfig())
		if err != nil {
			return err
		}
		value, err := facade.ContractPriceUSD(context.Background(), common.HexToAddress(args[0]), at, chain)
		if err != nil {
			return err
		}
		fmt.Printf("%f\n", value)
		return nil
	},
}

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Realized USD value of a swap transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, err := parseChain()
		if err != nil {
			return err
		}
		facade, err := buildFacade(loadConfig())
		if err != nil {
			return err
		}
		value, err := facade.TransactionValueUSD(context.Background(), common.HexToHash(args[0]), chain)
		if err != nil {
			return err
		}
		fmt.Printf("%f\n", value)
		return nil
	},
}

var spotCmd = &cobra.Command{
	Use:   "spot <symbol>",
	Short: "CEX close price of a token symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseAt()
		if err != nil {
			return err
		}
		facade, err := buildFacade(loadConfig())
		if err != nil {
			return err
		}
		value, err := facade.SpotPrice(context.Background(), args[0], at)
		if err != nil {
			return err
		}
		fmt.Printf("%f\n", value)
		return nil
	},
}

var tokenInfoCmd = &cobra.Command{
	Use:   "token-info <address>",
	Short: "Symbol and decimals of a token contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid contract address %q", args[0])
		}
		reader, err := newReader()
		if err != nil {
			return err
		}
		defer reader.Close()
		info, err := reader.ERC20Info(context.Background(), common.HexToAddress(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s decimals=%d address=%s\n", info.Symbol, info.Decimals, info.Address.Hex())
		return nil
	},
}

var poolTokensCmd = &cobra.Command{
	Use:   "pool-tokens <address>",
	Short: "Token pair of a DEX pool contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid pool address %q", args[0])
		}
		reader, err := newReader()
		if err != nil {
			return err
		}
		defer reader.Close()
		token0, token1, err := reader.PoolTokens(context.Background(), common.HexToAddress(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("token0=%s token1=%s\n", token0.Hex(), token1.Hex())
		return nil
	},
}

func newReader() (*onchain.Reader, error) {
	cfg := loadConfig()
	return onchain.NewReader(cfg.EthRPCURL)
}

func init() {
	rootCmd.AddCommand(contractCmd, txCmd, spotCmd, tokenInfoCmd, poolTokensCmd)
}
