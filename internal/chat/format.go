package chat

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"cryptoedu/internal/market"
	"cryptoedu/internal/models"
)

// FormatCompact abbreviates large numbers: 1.50B, 2.30M, 4.00K.
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	}
	return fmt.Sprintf("%.2f", v)
}

func (r *Router) formatPrice(query string, q models.PriceQuote) string {
	arrow := "↗️"
	if q.USD24hChange < 0 {
		arrow = "↘️"
	}
	return fmt.Sprintf("El precio actual de %s es $%s USD. Cambio 24h: %s %.2f%%",
		strings.ToUpper(query),
		r.printer.Sprintf("%.2f", q.USD),
		arrow,
		math.Abs(q.USD24hChange))
}

func (r *Router) formatConversion(q ConversionQuery, conv market.Conversion) string {
	var result string
	if q.To == models.USD {
		result = "$" + r.printer.Sprintf("%.2f", conv.Result)
	} else {
		result = r.formatCoinAmount(conv.Result)
	}
	return fmt.Sprintf("%s %s equivale a %s %s",
		strconv.FormatFloat(q.Amount, 'f', -1, 64),
		models.TickerFor(q.From),
		result,
		models.TickerFor(q.To))
}

// formatCoinAmount shows more decimals the smaller the amount is.
func (r *Router) formatCoinAmount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs < 0.001:
		return fmt.Sprintf("%.8f", v)
	case abs < 1:
		return fmt.Sprintf("%.6f", v)
	}
	return trimFraction(r.printer.Sprintf("%.6f", v), 2)
}

// trimFraction drops trailing zeros from a decimal string, keeping at
// least min fraction digits.
func trimFraction(s string, min int) string {
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1+min && s[end-1] == '0' {
		end--
	}
	return s[:end]
}

func (r *Router) basketTickers(prices models.PriceSnapshot) string {
	tickers := make([]string, 0, len(prices))
	for id := range prices {
		tickers = append(tickers, models.TickerFor(id))
	}
	sort.Strings(tickers)
	return strings.Join(tickers, ", ")
}

func (r *Router) formatTokenInfo(info *models.TokenInfo) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("# %s (%s)", info.Name, info.Symbol)

	var marketRows []string
	if v, ok := info.MarketData.CurrentPrice["usd"]; ok {
		marketRows = append(marketRows, "- Precio: $"+r.formatUSD(v))
	}
	if v, ok := info.MarketData.MarketCap["usd"]; ok {
		marketRows = append(marketRows, "- Capitalización: $"+FormatCompact(v))
	}
	if v, ok := info.MarketData.TotalVolume["usd"]; ok {
		marketRows = append(marketRows, "- Volumen 24h: $"+FormatCompact(v))
	}
	if len(marketRows) > 0 {
		line("")
		line("## 📊 Datos de Mercado")
		line("%s", strings.Join(marketRows, "\n"))
	}

	var supply []string
	if s := info.MarketData.CirculatingSupply; s != nil {
		supply = append(supply, fmt.Sprintf("- Circulante: %s %s", FormatCompact(*s), info.Symbol))
	}
	if s := info.MarketData.TotalSupply; s != nil {
		supply = append(supply, fmt.Sprintf("- Total: %s %s", FormatCompact(*s), info.Symbol))
	}
	if s := info.MarketData.MaxSupply; s != nil {
		supply = append(supply, fmt.Sprintf("- Máximo: %s %s", FormatCompact(*s), info.Symbol))
	}
	if len(supply) > 0 {
		line("")
		line("## 💰 Información de Suministro")
		line("%s", strings.Join(supply, "\n"))
	}

	var community []string
	cd := info.CommunityData
	if cd.TwitterFollowers != nil {
		community = append(community, fmt.Sprintf("- Twitter: %s seguidores", FormatCompact(float64(*cd.TwitterFollowers))))
	}
	if cd.RedditSubscribers != nil {
		community = append(community, fmt.Sprintf("- Reddit: %s subscriptores", FormatCompact(float64(*cd.RedditSubscribers))))
	}
	if cd.TelegramChannelUserCount != nil {
		community = append(community, fmt.Sprintf("- Telegram: %s usuarios", FormatCompact(float64(*cd.TelegramChannelUserCount))))
	}
	if len(community) > 0 {
		line("")
		line("## 👥 Métricas de Comunidad")
		line("%s", strings.Join(community, "\n"))
	}

	var dev []string
	dd := info.DeveloperData
	for _, f := range []struct {
		label string
		value *int64
	}{
		{"Commits (4 semanas)", dd.CommitCount4Weeks},
		{"Forks", dd.Forks},
		{"Stars", dd.Stars},
		{"PRs merged", dd.PullRequestsMerged},
		{"Contribuidores", dd.PullRequestContributors},
	} {
		if f.value != nil {
			dev = append(dev, fmt.Sprintf("- %s: %d", f.label, *f.value))
		}
	}
	if len(dev) > 0 {
		line("")
		line("## 👨‍💻 Actividad de Desarrollo")
		line("%s", strings.Join(dev, "\n"))
	}

	var links []string
	if u, ok := models.FirstNonEmpty(info.Links.Homepage); ok {
		links = append(links, "- Sitio web: "+u)
	}
	if u, ok := models.FirstNonEmpty(info.Links.BlockchainSite); ok {
		links = append(links, "- Explorer: "+u)
	}
	if info.Links.TwitterScreenName != "" {
		links = append(links, "- Twitter: https://twitter.com/"+info.Links.TwitterScreenName)
	}
	if info.Links.TelegramChannelIdentifier != "" {
		links = append(links, "- Telegram: https://t.me/"+info.Links.TelegramChannelIdentifier)
	}
	if u, ok := models.FirstNonEmpty(info.Links.GitHub); ok {
		links = append(links, "- GitHub: "+u)
	}
	if len(links) > 0 {
		line("")
		line("## 🔗 Enlaces Importantes")
		line("%s", strings.Join(links, "\n"))
	}

	line("")
	line("## 📝 Descripción")
	line("%s", firstSentence(info.Description))
	line("")
	b.WriteString("_Nota: Toda esta información es educativa y no constituye asesoría financiera. Siempre realiza tu propia investigación._")

	return b.String()
}

func (r *Router) formatUSD(v float64) string {
	if math.Abs(v) < 1 {
		return trimFraction(fmt.Sprintf("%.8f", v), 2)
	}
	return r.printer.Sprintf("%.2f", v)
}

func firstSentence(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "No hay descripción disponible."
	}
	if i := strings.Index(desc, "."); i >= 0 {
		return desc[:i+1]
	}
	return desc + "."
}
