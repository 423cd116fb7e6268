package market

import (
	"context"
	"math"
	"strconv"
	"strings"

	"cryptoedu/internal/clock"
	"cryptoedu/internal/models"
)

// Conversion is the outcome of converting an amount between two codes.
type Conversion struct {
	Result float64
	Rate   float64
}

// ParseAmount parses raw as a finite float.
func ParseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Convert converts amount from one currency code to another using the USD
// prices in prices. "usd" is the base and is never looked up in prices.
// Rules are tried in order: usd->coin, coin->usd, coin->coin.
// No rounding is applied.
func Convert(amount float64, from, to string, prices models.PriceSnapshot) (Conversion, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Conversion{}, ErrInvalidAmount
	}

	fromQuote, fromOK := lookup(prices, from)
	toQuote, toOK := lookup(prices, to)

	switch {
	case from == models.USD && toOK:
		return Conversion{Result: amount / toQuote.USD, Rate: 1 / toQuote.USD}, nil
	case to == models.USD && fromOK:
		return Conversion{Result: amount * fromQuote.USD, Rate: fromQuote.USD}, nil
	case fromOK && toOK:
		return Conversion{
			Result: amount * fromQuote.USD / toQuote.USD,
			Rate:   fromQuote.USD / toQuote.USD,
		}, nil
	}

	if !fromOK && from != models.USD {
		return Conversion{}, &UnknownCurrencyError{Side: "from", Code: from}
	}
	if !toOK && to != models.USD {
		return Conversion{}, &UnknownCurrencyError{Side: "to", Code: to}
	}
	// usd -> usd
	return Conversion{}, &UnknownCurrencyError{Side: "to", Code: to}
}

// lookup treats a non-positive price as absent; dividing by it would
// yield an infinite rate.
func lookup(prices models.PriceSnapshot, code string) (models.PriceQuote, bool) {
	q, ok := prices[code]
	if !ok || q.USD <= 0 {
		return models.PriceQuote{}, false
	}
	return q, true
}

// Snapshotter is anything that can provide the current price snapshot.
type Snapshotter interface {
	GetPrices(ctx context.Context) (models.PriceSnapshot, error)
}

// Converter converts amounts against the live price cache.
type Converter struct {
	prices Snapshotter
	clock  clock.Clock
}

func NewConverter(prices Snapshotter, clk clock.Clock) *Converter {
	if clk == nil {
		clk = clock.System{}
	}
	return &Converter{prices: prices, clock: clk}
}

// Convert validates amount, reads the current snapshot and converts.
// Invalid amounts fail before any price lookup.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) (*models.ConversionResult, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	prices, err := c.prices.GetPrices(ctx)
	if err != nil {
		return nil, err
	}

	conv, err := Convert(amount, from, to, prices)
	if err != nil {
		return nil, err
	}

	return &models.ConversionResult{
		From:      from,
		To:        to,
		Amount:    amount,
		Result:    conv.Result,
		Rate:      conv.Rate,
		Timestamp: c.clock.Now().UTC(),
	}, nil
}
