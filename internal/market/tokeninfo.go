package market

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cryptoedu/internal/clock"
	"cryptoedu/internal/coingecko"
	"cryptoedu/internal/metrics"
	"cryptoedu/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTokenInfoTTL is the per-id cache lifetime.
	DefaultTokenInfoTTL = 5 * time.Minute

	chartDays = 30
)

// CoinSource fetches coin metadata and market charts.
type CoinSource interface {
	FetchCoin(ctx context.Context, id string) (*coingecko.CoinResponse, error)
	FetchMarketChart(ctx context.Context, id string, days int) (*coingecko.MarketChartResponse, error)
}

type tokenEntry struct {
	info      *models.TokenInfo
	fetchedAt time.Time
}

// TokenInfoAggregator combines coin metadata and the 30 day chart into a
// TokenInfo, cached per id. Entries expire lazily on read.
type TokenInfoAggregator struct {
	source CoinSource
	ttl    time.Duration
	clock  clock.Clock
	logger *log.Entry

	mu      sync.RWMutex
	entries map[string]tokenEntry
	group   singleflight.Group
}

type TokenInfoOption func(*TokenInfoAggregator)

func WithTokenInfoTTL(ttl time.Duration) TokenInfoOption {
	return func(a *TokenInfoAggregator) { a.ttl = ttl }
}

func WithTokenInfoClock(clk clock.Clock) TokenInfoOption {
	return func(a *TokenInfoAggregator) { a.clock = clk }
}

func WithTokenInfoLogger(logger *log.Entry) TokenInfoOption {
	return func(a *TokenInfoAggregator) { a.logger = logger }
}

func NewTokenInfoAggregator(source CoinSource, opts ...TokenInfoOption) *TokenInfoAggregator {
	a := &TokenInfoAggregator{
		source:  source,
		ttl:     DefaultTokenInfoTTL,
		clock:   clock.System{},
		logger:  log.NewEntry(log.StandardLogger()),
		entries: make(map[string]tokenEntry),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithField("component", "token-info")
	return a
}

// GetTokenInfo returns a copy of the normalized record for id. On a miss both
// upstream calls run concurrently and must both succeed; nothing is
// cached on failure.
func (a *TokenInfoAggregator) GetTokenInfo(ctx context.Context, id string) (*models.TokenInfo, error) {
	if info, ok := a.fresh(id); ok {
		metrics.RecordCacheHit("token_info")
		a.logger.WithField("id", id).Debug("cache_hit")
		return info.Clone(), nil
	}
	metrics.RecordCacheMiss("token_info")

	v, err, _ := a.group.Do(id, func() (any, error) {
		if info, ok := a.fresh(id); ok {
			return info, nil
		}

		info, err := a.fetch(ctx, id)
		if err != nil {
			a.logger.WithFields(log.Fields{"id": id, "error": err}).Warn("token fetch failed")
			return nil, err
		}

		a.mu.Lock()
		a.entries[id] = tokenEntry{info: info, fetchedAt: a.clock.Now()}
		a.mu.Unlock()

		a.logger.WithFields(log.Fields{"id": id, "points": len(info.PriceHistory)}).Debug("cache_update")
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers of one flight share v; each gets its own copy.
	return v.(*models.TokenInfo).Clone(), nil
}

func (a *TokenInfoAggregator) fresh(id string) (*models.TokenInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[id]
	if !ok || a.clock.Now().Sub(e.fetchedAt) >= a.ttl {
		return nil, false
	}
	return e.info, true
}

func (a *TokenInfoAggregator) fetch(ctx context.Context, id string) (*models.TokenInfo, error) {
	var (
		coin  *coingecko.CoinResponse
		chart *coingecko.MarketChartResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coin, err = a.source.FetchCoin(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = a.source.FetchMarketChart(gctx, id, chartDays)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, coingecko.ErrNotFound) {
			return nil, &TokenNotFoundError{ID: id}
		}
		return nil, &UpstreamFetchError{Op: "token_info", Err: err}
	}

	return normalize(coin, chart), nil
}

// normalize flattens the upstream payloads. Only the symbol is
// transformed; everything else is copied as is.
func normalize(coin *coingecko.CoinResponse, chart *coingecko.MarketChartResponse) *models.TokenInfo {
	info := &models.TokenInfo{
		ID:          coin.ID,
		Symbol:      strings.ToUpper(coin.Symbol),
		Name:        coin.Name,
		Description: coin.Description.EN,
	}

	if md := coin.MarketData; md != nil {
		info.MarketData = models.MarketData{
			CurrentPrice:      md.CurrentPrice,
			MarketCap:         md.MarketCap,
			TotalVolume:       md.TotalVolume,
			CirculatingSupply: md.CirculatingSupply,
			TotalSupply:       md.TotalSupply,
			MaxSupply:         md.MaxSupply,
		}
	}

	if cd := coin.CommunityData; cd != nil {
		info.CommunityData = models.CommunityData{
			TwitterFollowers:         cd.TwitterFollowers,
			RedditSubscribers:        cd.RedditSubscribers,
			TelegramChannelUserCount: cd.TelegramChannelUserCount,
		}
	}

	if dd := coin.DeveloperData; dd != nil {
		info.DeveloperData = models.DeveloperData{
			Forks:                   dd.Forks,
			Stars:                   dd.Stars,
			Subscribers:             dd.Subscribers,
			TotalIssues:             dd.TotalIssues,
			ClosedIssues:            dd.ClosedIssues,
			PullRequestsMerged:      dd.PullRequestsMerged,
			PullRequestContributors: dd.PullRequestContributors,
			CommitCount4Weeks:       dd.CommitCount4Weeks,
		}
	}

	if l := coin.Links; l != nil {
		info.Links = models.Links{
			Homepage:                  l.Homepage,
			BlockchainSite:            l.BlockchainSite,
			OfficialForumURL:          l.OfficialForumURL,
			ChatURL:                   l.ChatURL,
			AnnouncementURL:           l.AnnouncementURL,
			TwitterScreenName:         l.TwitterScreenName,
			TelegramChannelIdentifier: l.TelegramChannelIdentifier,
			GitHub:                    l.ReposURL.GitHub,
		}
	}

	if chart != nil {
		info.PriceHistory = toChartPoints(chart.Prices)
		info.MarketCaps = toChartPoints(chart.MarketCaps)
		info.TotalVolumes = toChartPoints(chart.TotalVolumes)
	}

	return info
}

func toChartPoints(raw [][]float64) []models.ChartPoint {
	if raw == nil {
		return nil
	}
	points := make([]models.ChartPoint, 0, len(raw))
	for _, p := range raw {
		if len(p) < 2 {
			continue
		}
		points = append(points, models.ChartPoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Value: p[1],
		})
	}
	return points
}
