package coingecko

// SimplePriceResponse is the /simple/price payload requested with
// vs_currencies=usd&include_24hr_change=true:
//
//	{"bitcoin": {"usd": 50000, "usd_24h_change": 2.5}}
type SimplePriceResponse map[string]struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// CoinResponse is the subset of /coins/{id} used by the token aggregator.
// Optional scalars are pointers so a missing field stays distinguishable
// from zero.
type CoinResponse struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	MarketData    *CoinMarketData    `json:"market_data"`
	CommunityData *CoinCommunityData `json:"community_data"`
	DeveloperData *CoinDeveloperData `json:"developer_data"`
	Links         *CoinLinks         `json:"links"`
}

type CoinMarketData struct {
	CurrentPrice      map[string]float64 `json:"current_price"`
	MarketCap         map[string]float64 `json:"market_cap"`
	TotalVolume       map[string]float64 `json:"total_volume"`
	CirculatingSupply *float64           `json:"circulating_supply"`
	TotalSupply       *float64           `json:"total_supply"`
	MaxSupply         *float64           `json:"max_supply"`
}

type CoinCommunityData struct {
	TwitterFollowers         *int64 `json:"twitter_followers"`
	RedditSubscribers        *int64 `json:"reddit_subscribers"`
	TelegramChannelUserCount *int64 `json:"telegram_channel_user_count"`
}

type CoinDeveloperData struct {
	Forks                   *int64 `json:"forks"`
	Stars                   *int64 `json:"stars"`
	Subscribers             *int64 `json:"subscribers"`
	TotalIssues             *int64 `json:"total_issues"`
	ClosedIssues            *int64 `json:"closed_issues"`
	PullRequestsMerged      *int64 `json:"pull_requests_merged"`
	PullRequestContributors *int64 `json:"pull_request_contributors"`
	CommitCount4Weeks       *int64 `json:"commit_count_4_weeks"`
}

type CoinLinks struct {
	Homepage                  []string `json:"homepage"`
	BlockchainSite            []string `json:"blockchain_site"`
	OfficialForumURL          []string `json:"official_forum_url"`
	ChatURL                   []string `json:"chat_url"`
	AnnouncementURL           []string `json:"announcement_url"`
	TwitterScreenName         string   `json:"twitter_screen_name"`
	TelegramChannelIdentifier string   `json:"telegram_channel_identifier"`
	ReposURL                  struct {
		GitHub []string `json:"github"`
	} `json:"repos_url"`
}

// MarketChartResponse is the /coins/{id}/market_chart payload. Each point
// is [unix_millis, value].
type MarketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

type errorResponse struct {
	Error string `json:"error"`
}
