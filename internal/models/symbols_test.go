package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCurrency(t *testing.T) {
	tests := map[string]string{
		"BTC":      "bitcoin",
		" eth ":    "ethereum",
		"dólares":  "usd",
		"Dolares":  "usd",
		"USD":      "usd",
		"solana":   "solana",
		"Dogecoin": "dogecoin",
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolveCurrency(in), "input %q", in)
	}
}

func TestTickerFor(t *testing.T) {
	assert.Equal(t, "USD", TickerFor(USD))
	assert.Equal(t, "ETH", TickerFor("ethereum"))
	assert.Equal(t, "SHIBA-INU", TickerFor("shiba-inu"))
}

func restoreTickers(t *testing.T) {
	t.Helper()
	saved := make(map[string]string, len(Tickers))
	for k, v := range Tickers {
		saved[k] = v
	}
	t.Cleanup(func() {
		Tickers = saved
		displayTickers = reverseTickers(saved)
	})
}

func TestLoadTickersFromJSON(t *testing.T) {
	restoreTickers(t)

	path := filepath.Join(t.TempDir(), "tickers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"SHIB":"Shiba-Inu"}`), 0o600))

	require.NoError(t, LoadTickersFromJSON(path))
	assert.Equal(t, "shiba-inu", ResolveCurrency("shib"))
	assert.Equal(t, "bitcoin", ResolveCurrency("btc"))
}

func TestTickerFor_ExtraAliasKeepsDisplayTicker(t *testing.T) {
	restoreTickers(t)

	path := filepath.Join(t.TempDir(), "tickers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"XBT":"bitcoin","ZSHIB":"shiba-inu","SHIB":"shiba-inu"}`), 0o600))
	require.NoError(t, LoadTickersFromJSON(path))

	for i := 0; i < 20; i++ {
		assert.Equal(t, "BTC", TickerFor("bitcoin"))
		assert.Equal(t, "SHIB", TickerFor("shiba-inu"))
	}
	assert.Equal(t, "bitcoin", ResolveCurrency("xbt"))
}

func TestLoadTickersFromJSON_MissingFile(t *testing.T) {
	require.NoError(t, LoadTickersFromJSON(""))
	require.NoError(t, LoadTickersFromJSON(filepath.Join(t.TempDir(), "nope.json")))
}

func TestLoadTickersFromJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2`), 0o600))
	assert.Error(t, LoadTickersFromJSON(path))
}

func TestPriceSnapshotClone(t *testing.T) {
	s := PriceSnapshot{"bitcoin": {USD: 1}}
	c := s.Clone()
	c["bitcoin"] = PriceQuote{USD: 2}
	assert.Equal(t, 1.0, s["bitcoin"].USD)
	assert.Nil(t, PriceSnapshot(nil).Clone())
}
