package models

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// USD is the synthetic base currency. It never appears in a PriceSnapshot.
const USD = "usd"

// Tickers maps common ticker symbols to CoinGecko coin ids.
// Key is the lower-cased ticker.
var Tickers = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"sol":   "solana",
	"ada":   "cardano",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"link":  "chainlink",
	"usdt":  "tether",
	"usdc":  "usd-coin",
	"dai":   "dai",
}

// displayTickers maps a coin id back to the ticker shown for it. The
// first ticker registered for an id keeps the slot.
var displayTickers = reverseTickers(Tickers)

func reverseTickers(tickers map[string]string) map[string]string {
	keys := make([]string, 0, len(tickers))
	for t := range tickers {
		keys = append(keys, t)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(tickers))
	for _, t := range keys {
		if _, ok := out[tickers[t]]; !ok {
			out[tickers[t]] = t
		}
	}
	return out
}

// usdAliases are the words a user may write for the US dollar.
var usdAliases = map[string]struct{}{
	"usd":     {},
	"dollar":  {},
	"dollars": {},
	"dolar":   {},
	"dólar":   {},
	"dólares": {},
	"dolares": {},
	"$":       {},
}

// ResolveCurrency turns user input into a canonical currency code: a coin
// id from Tickers, USD, or the trimmed lower-cased input itself.
func ResolveCurrency(input string) string {
	q := strings.ToLower(strings.TrimSpace(input))
	if _, ok := usdAliases[q]; ok {
		return USD
	}
	if id, ok := Tickers[q]; ok {
		return id
	}
	return q
}

// TickerFor returns the display ticker for a canonical currency code.
func TickerFor(id string) string {
	if id == USD {
		return "USD"
	}
	if ticker, ok := displayTickers[id]; ok {
		return strings.ToUpper(ticker)
	}
	return strings.ToUpper(id)
}

// LoadTickersFromJSON loads ticker mappings from a JSON file and merges them
// with the defaults. A missing or unset file keeps the defaults.
func LoadTickersFromJSON(filePath string) error {
	if filePath == "" {
		log.Debug("no custom tickers file specified, using defaults")
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", filePath).Warn("tickers file not found, using defaults")
			return nil
		}
		return err
	}

	var custom map[string]string
	if err := json.Unmarshal(data, &custom); err != nil {
		return err
	}

	keys := make([]string, 0, len(custom))
	for ticker := range custom {
		keys = append(keys, ticker)
	}
	sort.Strings(keys)

	for _, ticker := range keys {
		t, id := strings.ToLower(ticker), strings.ToLower(custom[ticker])
		Tickers[t] = id
		if _, ok := displayTickers[id]; !ok {
			displayTickers[id] = t
		}
	}

	log.WithFields(log.Fields{"path": filePath, "count": len(custom)}).Info("loaded custom tickers")
	return nil
}
