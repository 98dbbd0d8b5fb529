package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"chainprice/internal/config"
)

// ConfigSummaryLines returns human readable lines describing the loaded app
// config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	return []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(strings.TrimSpace(cfg.Postgres.DSN) != "")),
		fmt.Sprintf("Journal: %s", journalLine(cfg.Journal)),
		fmt.Sprintf("CoinGecko API key: %s", presence(cfg.CoingeckoAPIKey != "")),
		fmt.Sprintf("Ethereum RPC: %s", presence(cfg.EthRPCURL != "")),
		priceLine(cfg),
	}
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func journalLine(j config.JournalConf) string {
	if strings.TrimSpace(j.Dir) == "" {
		return "not configured"
	}
	return fmt.Sprintf("%s (%s)", j.Dir, j.Encoding)
}

func priceLine(cfg *config.Config) string {
	switch {
	case strings.TrimSpace(cfg.Price.File) != "":
		return fmt.Sprintf("Price sources: %s", cfg.Price.File)
	case cfg.Price.Value != nil:
		return "Price sources: inline"
	default:
		return "Price sources: defaults"
	}
}
