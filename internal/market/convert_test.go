package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cryptoedu/internal/clock"
	"cryptoedu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrices = models.PriceSnapshot{
	"bitcoin":  {USD: 50000, USD24hChange: 2.5},
	"ethereum": {USD: 3000, USD24hChange: -1.0},
	"solana":   {USD: 150, USD24hChange: 4.2},
	"cardano":  {USD: 0.45, USD24hChange: 0},
}

func TestConvert_CoinToCoin(t *testing.T) {
	got, err := Convert(2, "ethereum", "bitcoin", testPrices)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got.Result, 1e-12)
	assert.InDelta(t, 0.06, got.Rate, 1e-12)
}

func TestConvert_FromUSD(t *testing.T) {
	for id, q := range testPrices {
		got, err := Convert(1000, models.USD, id, testPrices)
		require.NoError(t, err, id)
		assert.Equal(t, 1000/q.USD, got.Result, id)
		assert.Equal(t, 1/q.USD, got.Rate, id)

		back, err := Convert(got.Result, id, models.USD, testPrices)
		require.NoError(t, err, id)
		assert.InDelta(t, 1000, back.Result, 1e-9, id)
	}
}

func TestConvert_ToUSD(t *testing.T) {
	got, err := Convert(0.5, "ethereum", models.USD, testPrices)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.Result)
	assert.Equal(t, 3000.0, got.Rate)
}

func TestConvert_RateIsPriceRatio(t *testing.T) {
	for from, fq := range testPrices {
		for to, tq := range testPrices {
			got, err := Convert(3, from, to, testPrices)
			require.NoError(t, err)
			assert.Equal(t, fq.USD/tq.USD, got.Rate, "%s->%s", from, to)
		}
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	tests := []struct {
		from, to string
		side     string
		code     string
	}{
		{"dogecoin", "bitcoin", "from", "dogecoin"},
		{"bitcoin", "dogecoin", "to", "dogecoin"},
		{"usd", "dogecoin", "to", "dogecoin"},
		{"dogecoin", "usd", "from", "dogecoin"},
		{"foo", "bar", "from", "foo"},
		{"usd", "usd", "to", "usd"},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, err := Convert(1, tt.from, tt.to, testPrices)
			var unknown *UnknownCurrencyError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tt.side, unknown.Side)
			assert.Equal(t, tt.code, unknown.Code)
			assert.Zero(t, got)
		})
	}
}

func TestConvert_ZeroPriceIsUnknown(t *testing.T) {
	prices := models.PriceSnapshot{"bitcoin": {USD: 50000}, "deadcoin": {USD: 0}}
	_, err := Convert(1, "bitcoin", "deadcoin", prices)
	var unknown *UnknownCurrencyError
	assert.ErrorAs(t, err, &unknown)
}

func TestConvert_InvalidAmount(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Convert(amount, "bitcoin", "usd", testPrices)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestConvert_InvalidAmountCheckedFirst(t *testing.T) {
	_, err := Convert(math.NaN(), "nope", "nada", testPrices)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 0.5 ")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	for _, raw := range []string{"", "abc", "NaN", "Inf", "-inf", "1e999"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, raw)
	}
}

type stubSnapshotter struct {
	prices models.PriceSnapshot
	err    error
	calls  int
}

func (s *stubSnapshotter) GetPrices(context.Context) (models.PriceSnapshot, error) {
	s.calls++
	return s.prices, s.err
}

func TestConverter_Convert(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	conv := NewConverter(&stubSnapshotter{prices: testPrices}, clk)

	got, err := conv.Convert(context.Background(), 2, "ethereum", "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", got.From)
	assert.Equal(t, "bitcoin", got.To)
	assert.Equal(t, 2.0, got.Amount)
	assert.InDelta(t, 0.12, got.Result, 1e-12)
	assert.InDelta(t, 0.06, got.Rate, 1e-12)
	assert.Equal(t, clk.Now(), got.Timestamp)
}

func TestConverter_InvalidAmountSkipsPriceLookup(t *testing.T) {
	snap := &stubSnapshotter{prices: testPrices}
	conv := NewConverter(snap, nil)

	_, err := conv.Convert(context.Background(), math.NaN(), "bitcoin", "usd")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Zero(t, snap.calls)
}

func TestConverter_UpstreamError(t *testing.T) {
	upstream := &UpstreamFetchError{Op: "prices", Err: errors.New("down")}
	conv := NewConverter(&stubSnapshotter{err: upstream}, nil)

	_, err := conv.Convert(context.Background(), 1, "bitcoin", "usd")
	var got *UpstreamFetchError
	assert.ErrorAs(t, err, &got)
}
