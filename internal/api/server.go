// Package api exposes the price, conversion, token info, chat, news and
// sentiment operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cryptoedu/internal/chat"
	"cryptoedu/internal/market"
	"cryptoedu/internal/metrics"
	"cryptoedu/internal/models"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type PriceLookup interface {
	GetPrices(ctx context.Context) (models.PriceSnapshot, error)
}

type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (*models.ConversionResult, error)
}

type TokenLookup interface {
	GetTokenInfo(ctx context.Context, id string) (*models.TokenInfo, error)
}

type ChatRouter interface {
	Route(ctx context.Context, text string) chat.Response
}

type NewsSource interface {
	Latest(ctx context.Context) ([]models.NewsItem, error)
}

type SentimentSource interface {
	Analyze(ctx context.Context) ([]models.Trend, error)
}

// Deps holds the services behind each route. News and Sentiment may be nil
// when no language model is configured.
type Deps struct {
	Prices    PriceLookup
	Converter Converter
	Tokens    TokenLookup
	Chat      ChatRouter
	News      NewsSource
	Sentiment SentimentSource
	Logger    *log.Entry
}

type Server struct {
	deps   Deps
	logger *log.Entry
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Server{deps: deps, logger: logger.WithField("component", "api")}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/crypto/prices", s.handlePrices).Methods(http.MethodGet)
	api.HandleFunc("/crypto/convert", s.handleConvert).Methods(http.MethodGet)
	api.HandleFunc("/crypto/token-info", s.handleTokenInfo).Methods(http.MethodGet)
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/news", s.handleNews).Methods(http.MethodGet)
	api.HandleFunc("/market-sentiment", s.handleSentiment).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.deps.Prices.GetPrices(r.Context())
	if err != nil {
		s.writeDomainError(w, "prices", err)
		return
	}
	WriteJSON(w, http.StatusOK, prices)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := models.ResolveCurrency(q.Get("from"))
	to := models.ResolveCurrency(q.Get("to"))
	rawAmount := q.Get("amount")
	if from == "" || to == "" || rawAmount == "" {
		BadRequest(w, "missing required parameters: from, to, amount")
		return
	}

	amount, err := market.ParseAmount(rawAmount)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	result, err := s.deps.Converter.Convert(r.Context(), amount, from, to)
	if err != nil {
		s.writeDomainError(w, "convert", err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("id")))
	if id == "" {
		BadRequest(w, "token id is required")
		return
	}

	info, err := s.deps.Tokens.GetTokenInfo(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, "token_info", err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		BadRequest(w, "message is required")
		return
	}

	resp := s.deps.Chat.Route(r.Context(), req.Message)
	WriteJSON(w, http.StatusOK, map[string]string{
		"intent": resp.Intent,
		"reply":  resp.Reply,
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		WriteError(w, http.StatusServiceUnavailable, "news summaries require a language model")
		return
	}
	items, err := s.deps.News.Latest(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("news failed")
		WriteError(w, http.StatusBadGateway, "error fetching news")
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sentiment == nil {
		WriteError(w, http.StatusServiceUnavailable, "market sentiment requires a language model")
		return
	}
	trends, err := s.deps.Sentiment.Analyze(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("sentiment failed")
		WriteError(w, http.StatusBadGateway, "error analyzing market sentiment")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

// writeDomainError maps market errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, op string, err error) {
	var (
		unknown  *market.UnknownCurrencyError
		notFound *market.TokenNotFoundError
	)
	switch {
	case errors.Is(err, market.ErrInvalidAmount):
		BadRequest(w, err.Error())
	case errors.As(err, &unknown):
		BadRequest(w, err.Error())
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.WithFields(log.Fields{"op": op, "error": err}).Error("request failed")
		WriteError(w, http.StatusBadGateway, "upstream service unavailable")
	}
}
