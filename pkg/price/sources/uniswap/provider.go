package uniswap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"chainprice/pkg/price"
)

const (
	defaultV3SubgraphURL = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v3"
	defaultV2SubgraphURL = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v2"
	defaultHTTPTimeout   = 10 * time.Second
)

// swapQuery selects the swap records belonging to one transaction.
const swapQuery = `query priceQuery($transaction_hash: String) {
  swaps(where: {transaction: $transaction_hash}) {
    amountUSD
    transaction {
      id
    }
  }
}`

// Provider resolves the realized USD value of a swap from a single Uniswap
// subgraph version. Every failure is normalized into *price.UsdValueError so
// a composite can chain versions without interpreting causes.
type Provider struct {
	version    string
	url        string
	httpClient *http.Client
}

// Option customises a subgraph provider.
type Option func(*Provider)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) {
		if hc != nil {
			p.httpClient = hc
		}
	}
}

// NewProvider constructs a provider for one subgraph version.
func NewProvider(version, url string, opts ...Option) *Provider {
	provider := &Provider{
		version:    version,
		url:        url,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

// Version names the subgraph dataset this provider queries.
func (p *Provider) Version() string { return p.version }

// SourceName identifies the provider in quote audit records.
func (p *Provider) SourceName() string { return "uniswap-" + p.version }

type graphRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables,omitempty"`
}

type graphError struct {
	Message string `json:"message"`
}

type swapRecord struct {
	AmountUSD   string `json:"amountUSD"`
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
}

type graphResponse struct {
	Data *struct {
		Swaps []swapRecord `json:"swaps"`
	} `json:"data"`
	Errors []graphError `json:"errors,omitempty"`
}

// TransactionValueUSD implements price.TransactionValueProvider.
func (p *Provider) TransactionValueUSD(ctx context.Context, txHash common.Hash, chain price.Blockchain) (float64, error) {
	value, err := p.querySwapValue(ctx, txHash)
	if err != nil {
		return 0, &price.UsdValueError{Cause: err}
	}
	return value, nil
}

func (p *Provider) querySwapValue(ctx context.Context, txHash common.Hash) (float64, error) {
	payload, err := json.Marshal(graphRequest{
		Query: swapQuery,
		Variables: map[string]string{
			"transaction_hash": strings.ToLower(txHash.Hex()),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("uniswap: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("uniswap: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("uniswap: perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("uniswap: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("uniswap: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded graphResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, fmt.Errorf("uniswap: decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return 0, fmt.Errorf("uniswap: query error: %s", decoded.Errors[0].Message)
	}
	if decoded.Data == nil {
		return 0, &price.MissingDataError{}
	}
	swaps := decoded.Data.Swaps
	if len(swaps) == 0 {
		return 0, &price.MissingDataError{}
	}
	// A transaction can contain several swaps; the first record wins. See
	// DESIGN.md for the ambiguity policy.
	value, err := strconv.ParseFloat(swaps[0].AmountUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("uniswap: parse amountUSD %q: %w", swaps[0].AmountUSD, err)
	}
	return value, nil
}
