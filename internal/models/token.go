package models

import (
	"maps"
	"slices"
	"time"
)

// TokenInfo is the flattened view of a coin's metadata and its 30 day
// market chart. Pointer and map fields are nil when upstream omitted them,
// which is distinct from a reported zero.
type TokenInfo struct {
	ID            string        `json:"id"`
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	MarketData    MarketData    `json:"market_data"`
	CommunityData CommunityData `json:"community_data"`
	DeveloperData DeveloperData `json:"developer_data"`
	Links         Links         `json:"links"`
	PriceHistory  []ChartPoint  `json:"price_history"`
	MarketCaps    []ChartPoint  `json:"market_caps"`
	TotalVolumes  []ChartPoint  `json:"total_volumes"`
}

// MarketData keeps the per-currency maps exactly as upstream reports them.
type MarketData struct {
	CurrentPrice      map[string]float64 `json:"current_price,omitempty"`
	MarketCap         map[string]float64 `json:"market_cap,omitempty"`
	TotalVolume       map[string]float64 `json:"total_volume,omitempty"`
	CirculatingSupply *float64           `json:"circulating_supply,omitempty"`
	TotalSupply       *float64           `json:"total_supply,omitempty"`
	MaxSupply         *float64           `json:"max_supply,omitempty"`
}

type CommunityData struct {
	TwitterFollowers         *int64 `json:"twitter_followers,omitempty"`
	RedditSubscribers        *int64 `json:"reddit_subscribers,omitempty"`
	TelegramChannelUserCount *int64 `json:"telegram_channel_user_count,omitempty"`
}

type DeveloperData struct {
	Forks                   *int64 `json:"forks,omitempty"`
	Stars                   *int64 `json:"stars,omitempty"`
	Subscribers             *int64 `json:"subscribers,omitempty"`
	TotalIssues             *int64 `json:"total_issues,omitempty"`
	ClosedIssues            *int64 `json:"closed_issues,omitempty"`
	PullRequestsMerged      *int64 `json:"pull_requests_merged,omitempty"`
	PullRequestContributors *int64 `json:"pull_request_contributors,omitempty"`
	CommitCount4Weeks       *int64 `json:"commit_count_4_weeks,omitempty"`
}

type Links struct {
	Homepage                  []string `json:"homepage,omitempty"`
	BlockchainSite            []string `json:"blockchain_site,omitempty"`
	OfficialForumURL          []string `json:"official_forum_url,omitempty"`
	ChatURL                   []string `json:"chat_url,omitempty"`
	AnnouncementURL           []string `json:"announcement_url,omitempty"`
	TwitterScreenName         string   `json:"twitter_screen_name,omitempty"`
	TelegramChannelIdentifier string   `json:"telegram_channel_identifier,omitempty"`
	GitHub                    []string `json:"github,omitempty"`
}

type ChartPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// FirstNonEmpty returns the first non-blank entry of values.
func FirstNonEmpty(values []string) (string, bool) {
	for _, v := range values {
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// Clone returns a deep copy of t so callers can modify it freely.
func (t *TokenInfo) Clone() *TokenInfo {
	if t == nil {
		return nil
	}
	out := *t

	md := &out.MarketData
	md.CurrentPrice = maps.Clone(t.MarketData.CurrentPrice)
	md.MarketCap = maps.Clone(t.MarketData.MarketCap)
	md.TotalVolume = maps.Clone(t.MarketData.TotalVolume)
	md.CirculatingSupply = clonePtr(t.MarketData.CirculatingSupply)
	md.TotalSupply = clonePtr(t.MarketData.TotalSupply)
	md.MaxSupply = clonePtr(t.MarketData.MaxSupply)

	cd := &out.CommunityData
	cd.TwitterFollowers = clonePtr(t.CommunityData.TwitterFollowers)
	cd.RedditSubscribers = clonePtr(t.CommunityData.RedditSubscribers)
	cd.TelegramChannelUserCount = clonePtr(t.CommunityData.TelegramChannelUserCount)

	dd := &out.DeveloperData
	dd.Forks = clonePtr(t.DeveloperData.Forks)
	dd.Stars = clonePtr(t.DeveloperData.Stars)
	dd.Subscribers = clonePtr(t.DeveloperData.Subscribers)
	dd.TotalIssues = clonePtr(t.DeveloperData.TotalIssues)
	dd.ClosedIssues = clonePtr(t.DeveloperData.ClosedIssues)
	dd.PullRequestsMerged = clonePtr(t.DeveloperData.PullRequestsMerged)
	dd.PullRequestContributors = clonePtr(t.DeveloperData.PullRequestContributors)
	dd.CommitCount4Weeks = clonePtr(t.DeveloperData.CommitCount4Weeks)

	l := &out.Links
	l.Homepage = slices.Clone(t.Links.Homepage)
	l.BlockchainSite = slices.Clone(t.Links.BlockchainSite)
	l.OfficialForumURL = slices.Clone(t.Links.OfficialForumURL)
	l.ChatURL = slices.Clone(t.Links.ChatURL)
	l.AnnouncementURL = slices.Clone(t.Links.AnnouncementURL)
	l.GitHub = slices.Clone(t.Links.GitHub)

	out.PriceHistory = slices.Clone(t.PriceHistory)
	out.MarketCaps = slices.Clone(t.MarketCaps)
	out.TotalVolumes = slices.Clone(t.TotalVolumes)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
