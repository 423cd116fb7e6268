package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoedu/internal/api"
	"cryptoedu/internal/bot"
	"cryptoedu/internal/chat"
	"cryptoedu/internal/clock"
	"cryptoedu/internal/coingecko"
	"cryptoedu/internal/config"
	"cryptoedu/internal/llm"
	"cryptoedu/internal/market"
	"cryptoedu/internal/models"
	"cryptoedu/internal/news"
	"cryptoedu/internal/sentiment"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	logger := cfg.NewLogger()
	log.SetLevel(logger.GetLevel())
	log.SetFormatter(logger.Formatter)
	entry := log.NewEntry(logger)

	if err := models.LoadTickersFromJSON(cfg.TickersFile); err != nil {
		entry.WithError(err).Fatal("failed to load tickers")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gecko := coingecko.NewClient(coingecko.Config{
		BaseURL:         cfg.CoinGeckoBaseURL,
		APIKey:          cfg.CoinGeckoAPIKey,
		Timeout:         cfg.HTTPTimeout,
		RateLimitPerMin: cfg.CoinGeckoRateLimitMin,
		Logger:          entry,
	})

	clk := clock.System{}
	prices := market.NewPriceCache(gecko,
		market.WithPriceTTL(cfg.PriceCacheTTL),
		market.WithPriceClock(clk),
		market.WithPriceLogger(entry),
	)
	tokens := market.NewTokenInfoAggregator(gecko,
		market.WithTokenInfoTTL(cfg.TokenInfoCacheTTL),
		market.WithTokenInfoClock(clk),
		market.WithTokenInfoLogger(entry),
	)
	converter := market.NewConverter(prices, clk)

	deps := api.Deps{
		Prices:    prices,
		Converter: converter,
		Tokens:    tokens,
		Logger:    entry,
	}

	// A nil *llm.Client must not end up inside a non-nil interface.
	var completer chat.Completer
	if cfg.OpenAIAPIKey != "" {
		client, err := llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Logger:  entry,
		})
		if err != nil {
			entry.WithError(err).Fatal("failed to create language model client")
		}
		completer = client

		parser := gofeed.NewParser()
		parser.Client = &http.Client{Timeout: cfg.HTTPTimeout}
		deps.News = news.NewAggregator(parser, client, nil, entry)
		deps.Sentiment = sentiment.NewAnalyzer(prices, client, entry)
	} else {
		entry.Warn("OPENAI_API_SECRET_KEY not set, free-form chat, news and sentiment are disabled")
	}

	router := chat.NewRouter(prices, tokens, completer, entry)
	deps.Chat = router

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(deps).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		entry.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.WithError(err).Fatal("http server failed")
		}
	}()

	botDone := make(chan struct{})
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, bot.Config{
			Prices:  prices,
			Basket:  models.DefaultBasket,
			Chat:    router,
			Clock:   clk,
			Logger:  entry,
			Timeout: 2 * cfg.HTTPTimeout,
		})
		if err != nil {
			entry.WithError(err).Fatal("failed to start telegram bot")
		}
		go func() {
			defer close(botDone)
			b.Start(ctx)
		}()
	} else {
		close(botDone)
	}

	<-ctx.Done()
	entry.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		entry.WithError(err).Error("http server shutdown")
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		entry.Warn("telegram replies still pending at exit")
	}
}
