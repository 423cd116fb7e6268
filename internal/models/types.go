package models

import "time"

type Coin struct {
	Name string
	ID   string
}

// DefaultBasket is the fixed set of coins tracked by the price cache.
var DefaultBasket = []Coin{
	{Name: "Bitcoin", ID: "bitcoin"},
	{Name: "Ethereum", ID: "ethereum"},
	{Name: "Solana", ID: "solana"},
	{Name: "Cardano", ID: "cardano"},
}

// BasketIDs returns the coin ids of basket in order.
func BasketIDs(basket []Coin) []string {
	ids := make([]string, 0, len(basket))
	for _, c := range basket {
		ids = append(ids, c.ID)
	}
	return ids
}

type PriceQuote struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// PriceSnapshot maps a coin id to its quote. A snapshot is produced by a
// single upstream fetch and is never modified after it is stored.
type PriceSnapshot map[string]PriceQuote

// Clone returns an independent copy of s.
func (s PriceSnapshot) Clone() PriceSnapshot {
	if s == nil {
		return nil
	}
	out := make(PriceSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type ConversionResult struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Result    float64   `json:"result"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

type NewsItem struct {
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	PubDate time.Time `json:"pubDate"`
	Summary string    `json:"summary"`
	Source  string    `json:"source"`
}

type Trend struct {
	Symbol     string  `json:"symbol"`
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"`
	Prediction string  `json:"prediction"`
}
