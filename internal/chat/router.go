// Package chat classifies incoming chat messages and answers price,
// conversion and token questions directly, handing everything else to
// the language model.
package chat

import (
	"context"
	"regexp"
	"strings"

	"cryptoedu/internal/llm"
	"cryptoedu/internal/metrics"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Intent names.
const (
	IntentPrice     = "price"
	IntentConvert   = "convert"
	IntentTokenInfo = "token_info"
	IntentLLM       = "llm"
)

type PriceLookup interface {
	GetPrices(ctx context.Context) (models.PriceSnapshot, error)
}

type TokenLookup interface {
	GetTokenInfo(ctx context.Context, id string) (*models.TokenInfo, error)
}

type Completer interface {
	Complete(ctx context.Context, req llm.Completion) (string, error)
}

// HandlerFunc answers a matched message. ok=false hands the message on to
// the next intent.
type HandlerFunc func(ctx context.Context, match []string) (reply string, ok bool)

// Intent pairs a pattern with its handler. The first matching intent
// whose handler accepts the message wins.
type Intent struct {
	Name    string
	Pattern *regexp.Regexp
	Handle  HandlerFunc
}

// Response is the router's answer to one message.
type Response struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

type Router struct {
	prices  PriceLookup
	tokens  TokenLookup
	llm     Completer
	intents []Intent
	printer *message.Printer
	logger  *log.Entry
}

// NewRouter builds a router with the default intents. completer may be
// nil, in which case unmatched messages get an apology.
func NewRouter(prices PriceLookup, tokens TokenLookup, completer Completer, logger *log.Entry) *Router {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	r := &Router{
		prices:  prices,
		tokens:  tokens,
		llm:     completer,
		printer: message.NewPrinter(language.English),
		logger:  logger.WithField("component", "chat-router"),
	}
	r.intents = []Intent{
		{Name: IntentPrice, Pattern: pricePattern, Handle: r.handlePrice},
		{Name: IntentConvert, Pattern: convertPattern, Handle: r.handleConvert},
		{Name: IntentTokenInfo, Pattern: tokenInfoPattern, Handle: r.handleTokenInfo},
	}
	return r
}

// Intents returns the declared intents in evaluation order.
func (r *Router) Intents() []Intent {
	return append([]Intent(nil), r.intents...)
}

// Route answers text. It never fails: lookup errors become apologies.
func (r *Router) Route(ctx context.Context, text string) Response {
	text = strings.TrimSpace(text)

	for _, in := range r.intents {
		m := in.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		reply, ok := in.Handle(ctx, m)
		if !ok {
			r.logger.WithField("intent", in.Name).Debug("intent declined, falling through")
			continue
		}
		metrics.RecordIntent(in.Name)
		r.logger.WithField("intent", in.Name).Debug("routed")
		return Response{Intent: in.Name, Reply: reply}
	}

	metrics.RecordIntent(IntentLLM)
	return Response{Intent: IntentLLM, Reply: r.complete(ctx, text)}
}

func (r *Router) complete(ctx context.Context, text string) string {
	if r.llm == nil {
		return "Lo siento, el asistente no está disponible en este momento."
	}
	reply, err := r.llm.Complete(ctx, llm.Completion{
		System:      Persona,
		Prompt:      text,
		Temperature: 0.7,
	})
	if err != nil {
		r.logger.WithField("error", err).Warn("completion failed")
		return "Lo siento, hubo un problema al generar la respuesta. Inténtalo de nuevo más tarde."
	}
	return reply
}
