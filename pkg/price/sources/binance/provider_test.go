package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chainprice/pkg/price"
)

var testAt = time.Unix(1_700_000_000, 0)

const sampleCandle = `[[1700000000000, "1849.10", "1851.00", "1848.90", "1850.23", "120.5", 1700000059999, "223000.1", 42, "60.2", "111400.0", "0"]]`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewProvider(WithBaseURL(server.URL))
}

func TestSpotPriceBuildsPairAndWindow(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(sampleCandle))
	})

	value, err := provider.SpotPrice(context.Background(), "eth", testAt)
	require.NoError(t, err)
	require.Equal(t, 1850.23, value)

	require.Equal(t, "/klines", gotPath)
	require.Equal(t, "ETHUSDT", gotQuery.Get("symbol"))
	require.Equal(t, "1m", gotQuery.Get("interval"))
	require.Equal(t, "1", gotQuery.Get("limit"))
	require.Equal(t, strconv.FormatInt(testAt.UnixMilli(), 10), gotQuery.Get("startTime"))
	require.Equal(t, strconv.FormatInt(testAt.Add(time.Minute).UnixMilli(), 10), gotQuery.Get("endTime"))
}

func TestSpotPriceNoCandle(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := provider.SpotPrice(context.Background(), "eth", testAt)
	require.True(t, price.IsMissingData(err))
}

// Transport failures surface as missing data too; spot lookups have a single
// failure mode for callers.
func TestSpotPriceHTTPFailure(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := provider.SpotPrice(context.Background(), "eth", testAt)
	require.True(t, price.IsMissingData(err))
}

func TestSpotPriceMalformedCandle(t *testing.T) {
	cases := map[string]string{
		"short candle":     `[[1700000000000, "1", "2"]]`,
		"non-string close": `[[1700000000000, "1", "2", "3", 4.5]]`,
		"bad number":       `[[1700000000000, "1", "2", "3", "nope"]]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := provider.SpotPrice(context.Background(), "eth", testAt)
			require.True(t, price.IsMissingData(err))
		})
	}
}
