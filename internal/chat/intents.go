package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"cryptoedu/internal/market"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
)

var (
	// ¿cuánto vale bitcoin? / cuánto cuesta eth / precio de sol / cuál es el precio del ada
	pricePattern = regexp.MustCompile(`(?i)^¿?\s*(?:cu[aá]nto\s+(?:vale|cuesta)|(?:cu[aá]l\s+es\s+el\s+)?precio\s+(?:actual\s+)?del?)\s+(?:el\s+|la\s+)?([\p{L}\p{N}-]+)\s*\??$`)

	// cuánto son 0.5 ETH en dólares / convierte 2 btc a eth
	convertPattern = regexp.MustCompile(`(?i)(?:cu[aá]nto\s+(?:son|es|equivalen?)|convierte|convertir)\s+(\S+)\s+([\p{L}\p{N}$-]+)\s+(?:en|a)\s+([\p{L}\p{N}$-]+)`)

	// token info bitcoin / token data btc / crypto info eth
	tokenInfoPattern = regexp.MustCompile(`(?i)^(?:token\s+(?:info|data)|crypto\s+info)\s+([\p{L}\p{N}-]+)$`)
)

// ConversionQuery is what a conversion question asks for, with currencies
// already resolved to canonical codes.
type ConversionQuery struct {
	Amount float64
	From   string
	To     string
}

// ParseConversion extracts a conversion query from text. It reports false
// when text is not a conversion question or the amount is not a finite
// number.
func ParseConversion(text string) (ConversionQuery, bool) {
	m := convertPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ConversionQuery{}, false
	}
	return parseConversionMatch(m)
}

func parseConversionMatch(m []string) (ConversionQuery, bool) {
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ConversionQuery{}, false
	}
	return ConversionQuery{
		Amount: amount,
		From:   models.ResolveCurrency(m[2]),
		To:     models.ResolveCurrency(m[3]),
	}, true
}

func (r *Router) handlePrice(ctx context.Context, m []string) (string, bool) {
	query := m[1]
	id := models.ResolveCurrency(query)

	prices, err := r.prices.GetPrices(ctx)
	if err != nil {
		r.logger.WithFields(log.Fields{"query": query, "error": err}).Warn("price lookup failed")
		return fmt.Sprintf("Lo siento, hubo un error al obtener el precio de %s.", query), true
	}

	quote, ok := prices[id]
	if !ok {
		return fmt.Sprintf("Lo siento, no pude encontrar el precio de %s. Por favor, verifica que el nombre o símbolo sea correcto.", query), true
	}
	return r.formatPrice(query, quote), true
}

func (r *Router) handleConvert(ctx context.Context, m []string) (string, bool) {
	q, ok := parseConversionMatch(m)
	if !ok {
		return "", false
	}

	prices, err := r.prices.GetPrices(ctx)
	if err != nil {
		r.logger.WithFields(log.Fields{"from": q.From, "to": q.To, "error": err}).Warn("price lookup failed")
		return fmt.Sprintf("Lo siento, hubo un error al convertir de %s a %s.", m[2], m[3]), true
	}

	conv, err := market.Convert(q.Amount, q.From, q.To, prices)
	if err != nil {
		var unknown *market.UnknownCurrencyError
		if errors.As(err, &unknown) {
			input := m[2]
			if unknown.Side == "to" {
				input = m[3]
			}
			return fmt.Sprintf("Lo siento, no reconozco la moneda %s. Puedo convertir entre USD, %s.", input, r.basketTickers(prices)), true
		}
		return fmt.Sprintf("Lo siento, hubo un error al convertir de %s a %s.", m[2], m[3]), true
	}

	return r.formatConversion(q, conv), true
}

func (r *Router) handleTokenInfo(ctx context.Context, m []string) (string, bool) {
	id := models.ResolveCurrency(m[1])

	info, err := r.tokens.GetTokenInfo(ctx, id)
	if err != nil {
		r.logger.WithFields(log.Fields{"id": id, "error": err}).Warn("token info lookup failed")
		return "Lo siento, no pude encontrar información sobre ese token. Por favor, verifica que el nombre o símbolo sea correcto.", true
	}
	return r.formatTokenInfo(info), true
}
