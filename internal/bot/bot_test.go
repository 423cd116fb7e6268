package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cryptoedu/internal/chat"
	"cryptoedu/internal/clock"
	"cryptoedu/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	done    chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 4), done: make(chan struct{}, 4)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) StopReceivingUpdates() { close(f.updates) }

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	f.mu.Unlock()
	f.done <- struct{}{}
	return tgbotapi.Message{}, nil
}

type stubPrices struct {
	snapshot models.PriceSnapshot
	err      error
}

func (s stubPrices) GetPrices(context.Context) (models.PriceSnapshot, error) {
	return s.snapshot, s.err
}

type stubChat struct {
	mu  sync.Mutex
	got []string
}

func (s *stubChat) Route(_ context.Context, text string) chat.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, text)
	return chat.Response{Intent: chat.IntentLLM, Reply: "respuesta: " + text}
}

var now = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

func newBot(prices stubPrices) (*Bot, *fakeAPI, *stubChat) {
	api := newFakeAPI()
	c := &stubChat{}
	b := NewWithAPI(api, Config{Prices: prices, Chat: c, Clock: clock.NewFake(now)})
	return b, api, c
}

func TestRespond_Commands(t *testing.T) {
	b, _, c := newBot(stubPrices{})
	ctx := context.Background()

	assert.Equal(t, helpText, b.respond(ctx, "start", "", "/start"))
	assert.Equal(t, "respuesta: token info btc", b.respond(ctx, "token", " btc ", "/token btc"))
	assert.Contains(t, b.respond(ctx, "token", "", "/token"), "Uso: /token")
	assert.Contains(t, b.respond(ctx, "nope", "", "/nope"), "Comando no reconocido")
	assert.Equal(t, "respuesta: ¿cuánto vale bitcoin?", b.respond(ctx, "", "", "¿cuánto vale bitcoin?"))
	assert.Empty(t, b.respond(ctx, "", "", "   "))
	assert.Equal(t, []string{"token info btc", "¿cuánto vale bitcoin?"}, c.got)
}

func TestRespond_PricesUnavailable(t *testing.T) {
	b, _, _ := newBot(stubPrices{err: errors.New("down")})
	assert.Equal(t, "Lo siento, no pude obtener los precios en este momento.",
		b.respond(context.Background(), "prices", "", "/prices"))
}

func TestFormatBoard(t *testing.T) {
	b, _, _ := newBot(stubPrices{})
	out := b.formatBoard(models.PriceSnapshot{
		"bitcoin":  {USD: 50000, USD24hChange: 2.5},
		"ethereum": {USD: 3000, USD24hChange: -1},
		"cardano":  {USD: 0.5, USD24hChange: 0},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "📊 PRECIOS CRYPTO (24h) 📊", lines[0])
	assert.Equal(t, "🥇 #1 Bitcoin (BTC) | 💰 $50000.00 (🟢 2.50%)", lines[2])
	assert.Equal(t, "🥈 #2 Cardano (ADA) | 💰 $0.5000 (➖ 0.00%)", lines[3])
	assert.Equal(t, "🥉 #3 Ethereum (ETH) | 💰 $3000.00 (🔴 -1.00%)", lines[4])
	assert.Equal(t, "#4 Solana: sin datos", lines[5])
	assert.Equal(t, "🕒 Actualizado: 2025-03-01 12:30 UTC", lines[7])
}

func TestStart_RepliesAndStops(t *testing.T) {
	b, api, _ := newBot(stubPrices{})
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(stopped)
	}()

	api.updates <- tgbotapi.Update{}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "/start",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}

	select {
	case <-api.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, 7, api.sent[0].ReplyToMessageID)
	assert.Equal(t, helpText, api.sent[0].Text)
}

type blockingChat struct {
	entered chan struct{}
	release chan struct{}
}

func (c *blockingChat) Route(ctx context.Context, text string) chat.Response {
	close(c.entered)
	<-c.release
	return chat.Response{Intent: chat.IntentLLM, Reply: "tarde: " + text}
}

func TestStart_DrainsRepliesOnShutdown(t *testing.T) {
	api := newFakeAPI()
	c := &blockingChat{entered: make(chan struct{}), release: make(chan struct{})}
	b := NewWithAPI(api, Config{Prices: stubPrices{}, Chat: c, Clock: clock.NewFake(now)})
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(stopped)
	}()

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: 9},
		Text:      "qué es DeFi",
	}}
	<-c.entered
	cancel()

	select {
	case <-stopped:
		t.Fatal("Start returned before the pending reply was sent")
	case <-time.After(100 * time.Millisecond):
	}

	close(c.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 1)
	assert.Equal(t, "tarde: qué es DeFi", api.sent[0].Text)
}
