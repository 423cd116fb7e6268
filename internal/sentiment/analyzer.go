// Package sentiment asks the language model for a short trend reading of
// the main coins based on their 24h change.
package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cryptoedu/internal/llm"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
)

const systemPrompt = "Eres un analista experto en mercados crypto. Proporciona análisis técnicos concisos y realistas. " +
	"DEBES responder con un objeto JSON que contenga un array 'trends' con exactamente 3 elementos para BTC, ETH y SOL."

const promptTemplate = `Analiza las siguientes variaciones de precio en las últimas 24 horas:
BTC: %.2f%%
ETH: %.2f%%
SOL: %.2f%%

Proporciona un análisis técnico breve y una predicción para cada uno.
Responde en formato JSON con la siguiente estructura exacta:
{
  "trends": [
    {"symbol": "BTC", "percentage": number, "direction": "up" | "down", "prediction": "string (máximo 100 caracteres)"},
    {"symbol": "ETH", "percentage": number, "direction": "up" | "down", "prediction": "string (máximo 100 caracteres)"},
    {"symbol": "SOL", "percentage": number, "direction": "up" | "down", "prediction": "string (máximo 100 caracteres)"}
  ]
}`

// Required lists the coins the analysis is built from, in prompt order.
var Required = []string{"bitcoin", "ethereum", "solana"}

var ErrInvalidResponse = errors.New("invalid sentiment response")

// MissingPriceError reports a required coin absent from the snapshot.
type MissingPriceError struct {
	ID string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("missing price data for %s", e.ID)
}

type PriceLookup interface {
	GetPrices(ctx context.Context) (models.PriceSnapshot, error)
}

type Completer interface {
	Complete(ctx context.Context, req llm.Completion) (string, error)
}

type Analyzer struct {
	prices    PriceLookup
	completer Completer
	model     string
	logger    *log.Entry
}

func NewAnalyzer(prices PriceLookup, completer Completer, logger *log.Entry) *Analyzer {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Analyzer{
		prices:    prices,
		completer: completer,
		model:     "gpt-4",
		logger:    logger.WithField("component", "sentiment"),
	}
}

func (a *Analyzer) Analyze(ctx context.Context) ([]models.Trend, error) {
	snapshot, err := a.prices.GetPrices(ctx)
	if err != nil {
		return nil, err
	}

	changes := make([]any, 0, len(Required))
	for _, id := range Required {
		q, ok := snapshot[id]
		if !ok {
			return nil, &MissingPriceError{ID: id}
		}
		changes = append(changes, q.USD24hChange)
	}

	raw, err := a.completer.Complete(ctx, llm.Completion{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(promptTemplate, changes...),
		Temperature: 0.5,
		JSON:        true,
		Model:       a.model,
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment completion: %w", err)
	}

	trends, err := parseTrends(raw)
	if err != nil {
		a.logger.WithFields(log.Fields{"error": err, "raw": raw}).Warn("unusable sentiment response")
		return nil, err
	}
	return trends, nil
}

func parseTrends(raw string) ([]models.Trend, error) {
	var body struct {
		Trends []models.Trend `json:"trends"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(body.Trends) == 0 {
		return nil, fmt.Errorf("%w: no trends", ErrInvalidResponse)
	}
	return body.Trends, nil
}
