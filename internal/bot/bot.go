package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptoedu/internal/chat"
	"cryptoedu/internal/clock"
	"cryptoedu/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const helpText = `👋 ¡Hola! Soy tu asistente educativo de criptomonedas.

Puedes preguntarme cosas como:
• ¿Cuánto vale bitcoin?
• Cuánto son 0.5 ETH en dólares
• token info ethereum
• ¿Qué es DeFi?

Comandos:
/prices - tablero de precios
/token <id> - ficha de un token
/start - esta ayuda`

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type PriceLookup interface {
	GetPrices(ctx context.Context) (models.PriceSnapshot, error)
}

type ChatRouter interface {
	Route(ctx context.Context, text string) chat.Response
}

type Bot struct {
	api    API
	prices PriceLookup
	basket []models.Coin
	chat   ChatRouter
	clock  clock.Clock
	logger *log.Entry

	replyTimeout time.Duration
	inFlight     sync.WaitGroup
}

type Config struct {
	Prices  PriceLookup
	Basket  []models.Coin
	Chat    ChatRouter
	Clock   clock.Clock
	Logger  *log.Entry
	Timeout time.Duration
}

// New connects to Telegram with token.
func New(token string, cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b := NewWithAPI(api, cfg)
	b.logger.WithField("account", api.Self.UserName).Info("authorized on telegram")
	return b, nil
}

func NewWithAPI(api API, cfg Config) *Bot {
	if cfg.Basket == nil {
		cfg.Basket = models.DefaultBasket
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewEntry(log.StandardLogger())
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Bot{
		api:          api,
		prices:       cfg.Prices,
		basket:       cfg.Basket,
		chat:         cfg.Chat,
		clock:        cfg.Clock,
		logger:       cfg.Logger.WithField("component", "telegram"),
		replyTimeout: cfg.Timeout,
	}
}

// Start reads updates until ctx is cancelled, then waits for replies
// already being prepared to be sent.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	b.handleUpdates(ctx, updates)
	b.inFlight.Wait()
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.inFlight.Add(1)
		go func(m *tgbotapi.Message) {
			defer b.inFlight.Done()
			b.handleMessage(ctx, m)
		}(update.Message)
	}
}

// handleMessage outlives shutdown of the update loop; only replyTimeout
// bounds it.
func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.replyTimeout)
	defer cancel()

	text := b.respond(ctx, m.Command(), m.CommandArguments(), m.Text)
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithFields(log.Fields{"chat_id": m.Chat.ID, "error": err}).Warn("send failed")
	}
}

// respond builds the reply for a command, or for free text when command
// is empty.
func (b *Bot) respond(ctx context.Context, command, args, text string) string {
	switch command {
	case "start", "help":
		return helpText
	case "prices":
		snapshot, err := b.prices.GetPrices(ctx)
		if err != nil {
			b.logger.WithError(err).Warn("price board unavailable")
			return "Lo siento, no pude obtener los precios en este momento."
		}
		return b.formatBoard(snapshot)
	case "token":
		id := strings.TrimSpace(args)
		if id == "" {
			return "Uso: /token <id>, por ejemplo /token bitcoin"
		}
		return b.chat.Route(ctx, "token info "+id).Reply
	case "":
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return b.chat.Route(ctx, text).Reply
	}
	return "Comando no reconocido. Usa /start para ver la ayuda."
}

type boardRow struct {
	coin  models.Coin
	quote models.PriceQuote
	ok    bool
}

// formatBoard ranks the basket by 24h change, best first. Coins missing
// from the snapshot go last.
func (b *Bot) formatBoard(snapshot models.PriceSnapshot) string {
	rows := make([]boardRow, 0, len(b.basket))
	for _, c := range b.basket {
		q, ok := snapshot[c.ID]
		rows = append(rows, boardRow{coin: c, quote: q, ok: ok})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ok != rows[j].ok {
			return rows[i].ok
		}
		return rows[i].quote.USD24hChange > rows[j].quote.USD24hChange
	})

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		lines = append(lines, formatRow(i+1, row))
	}

	return fmt.Sprintf("📊 PRECIOS CRYPTO (24h) 📊\n\n%s\n\n🕒 Actualizado: %s",
		strings.Join(lines, "\n"),
		b.clock.Now().UTC().Format("2006-01-02 15:04 UTC"))
}

func formatRow(rank int, row boardRow) string {
	if !row.ok {
		return fmt.Sprintf("#%d %s: sin datos", rank, row.coin.Name)
	}

	rankEmoji := "▫️"
	switch rank {
	case 1:
		rankEmoji = "🥇"
	case 2:
		rankEmoji = "🥈"
	case 3:
		rankEmoji = "🥉"
	}

	indicator := "➖"
	if row.quote.USD24hChange > 0 {
		indicator = "🟢"
	} else if row.quote.USD24hChange < 0 {
		indicator = "🔴"
	}

	return fmt.Sprintf("%s #%d %s (%s) | 💰 %s (%s %.2f%%)",
		rankEmoji,
		rank,
		row.coin.Name,
		models.TickerFor(row.coin.ID),
		formatPrice(row.quote.USD),
		indicator,
		row.quote.USD24hChange)
}

func formatPrice(price float64) string {
	switch {
	case price == 0:
		return "N/A"
	case price < 1:
		return fmt.Sprintf("$%.4f", price)
	}
	return fmt.Sprintf("$%.2f", price)
}
