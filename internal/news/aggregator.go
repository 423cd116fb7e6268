// Package news collects the latest headlines from crypto RSS feeds and
// summarizes them in Spanish.
package news

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptoedu/internal/llm"
	"cryptoedu/internal/models"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const (
	itemsPerSource = 3
	maxItems       = 5
)

const summaryPrompt = `Eres un experto en criptomonedas y blockchain. Resume la noticia en español siguiendo estas pautas:

1. El resumen debe tener 2-3 oraciones.
2. Mantén los términos técnicos importantes.
3. Enfócate en los hechos más relevantes.
4. Usa un tono profesional pero accesible.
5. Incluye cifras o estadísticas importantes si las hay.
6. Evita opiniones o especulaciones.`

// ErrNoNews is returned when no item could be fetched and summarized.
var ErrNoNews = errors.New("no news available")

type Source struct {
	Name string
	URL  string
}

// DefaultSources are the feeds read when none are configured.
var DefaultSources = []Source{
	{Name: "CoinTelegraph", URL: "https://cointelegraph.com/rss"},
	{Name: "Decrypt", URL: "https://decrypt.co/feed"},
	{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
}

// FeedParser is satisfied by *gofeed.Parser.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

type Summarizer interface {
	Complete(ctx context.Context, req llm.Completion) (string, error)
}

type Aggregator struct {
	parser     FeedParser
	summarizer Summarizer
	sources    []Source
	model      string
	logger     *log.Entry
}

func NewAggregator(parser FeedParser, summarizer Summarizer, sources []Source, logger *log.Entry) *Aggregator {
	if parser == nil {
		parser = gofeed.NewParser()
	}
	if len(sources) == 0 {
		sources = DefaultSources
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Aggregator{
		parser:     parser,
		summarizer: summarizer,
		sources:    sources,
		model:      "gpt-3.5-turbo",
		logger:     logger.WithField("component", "news"),
	}
}

type rawItem struct {
	title     string
	link      string
	published time.Time
	content   string
	source    string
}

// Latest returns up to five of the newest items across all sources, each
// with a summary. A failing source or summary is skipped.
func (a *Aggregator) Latest(ctx context.Context) ([]models.NewsItem, error) {
	items := a.collect(ctx)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].published.After(items[j].published)
	})
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	news := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		summary, err := a.summarizer.Complete(ctx, llm.Completion{
			System:      summaryPrompt,
			Prompt:      item.content,
			Temperature: 0.5,
			Model:       a.model,
		})
		if err != nil {
			a.logger.WithFields(log.Fields{"source": item.source, "title": item.title, "error": err}).Warn("summary failed, skipping item")
			continue
		}
		news = append(news, models.NewsItem{
			Title:   item.title,
			Link:    item.link,
			PubDate: item.published,
			Summary: summary,
			Source:  item.source,
		})
	}

	if len(news) == 0 {
		return nil, ErrNoNews
	}
	return news, nil
}

func (a *Aggregator) collect(ctx context.Context) []rawItem {
	results := make(chan []rawItem, len(a.sources))

	var wg sync.WaitGroup
	for _, src := range a.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			feed, err := a.parser.ParseURLWithContext(src.URL, ctx)
			if err != nil {
				a.logger.WithFields(log.Fields{"source": src.Name, "error": err}).Warn("feed fetch failed")
				return
			}
			results <- toRawItems(src.Name, feed)
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []rawItem
	for batch := range results {
		all = append(all, batch...)
	}
	return all
}

func toRawItems(source string, feed *gofeed.Feed) []rawItem {
	if feed == nil {
		return nil
	}
	n := len(feed.Items)
	if n > itemsPerSource {
		n = itemsPerSource
	}

	out := make([]rawItem, 0, n)
	for _, it := range feed.Items[:n] {
		if it == nil {
			continue
		}
		item := rawItem{
			title:  it.Title,
			link:   it.Link,
			source: source,
		}
		if it.PublishedParsed != nil {
			item.published = it.PublishedParsed.UTC()
		}
		switch {
		case strings.TrimSpace(it.Content) != "":
			item.content = it.Content
		case strings.TrimSpace(it.Description) != "":
			item.content = it.Description
		default:
			item.content = it.Title
		}
		out = append(out, item)
	}
	return out
}
