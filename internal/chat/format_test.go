package chat

import (
	"strings"
	"testing"

	"cryptoedu/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "1.50B", FormatCompact(1.5e9))
	assert.Equal(t, "2.30M", FormatCompact(2.3e6))
	assert.Equal(t, "4.00K", FormatCompact(4000))
	assert.Equal(t, "12.34", FormatCompact(12.344))
	assert.Equal(t, "0.00", FormatCompact(0))
}

func TestTrimFraction(t *testing.T) {
	assert.Equal(t, "1,234.50", trimFraction("1,234.500000", 2))
	assert.Equal(t, "1.123456", trimFraction("1.123456", 2))
	assert.Equal(t, "7.00", trimFraction("7.000000", 2))
	assert.Equal(t, "12", trimFraction("12", 2))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Bitcoin is money.", firstSentence("Bitcoin is money. It is old."))
	assert.Equal(t, "No dots.", firstSentence("No dots"))
	assert.Equal(t, "No hay descripción disponible.", firstSentence("  "))
}

func TestFormatTokenInfo(t *testing.T) {
	r, _, _, _ := newRouter()
	zero := int64(0)
	stars := int64(70000)
	circ := 19_500_000.0

	info := &models.TokenInfo{
		ID:          "bitcoin",
		Symbol:      "BTC",
		Name:        "Bitcoin",
		Description: "Bitcoin is the first cryptocurrency. It was created in 2009.",
		MarketData: models.MarketData{
			CurrentPrice:      map[string]float64{"usd": 50000},
			MarketCap:         map[string]float64{"usd": 9.8e11},
			CirculatingSupply: &circ,
		},
		CommunityData: models.CommunityData{TwitterFollowers: &zero},
		DeveloperData: models.DeveloperData{Stars: &stars},
		Links: models.Links{
			Homepage: []string{"", "https://bitcoin.org"},
			GitHub:   []string{"https://github.com/bitcoin/bitcoin"},
		},
	}

	out := r.formatTokenInfo(info)
	assert.True(t, strings.HasPrefix(out, "# Bitcoin (BTC)\n\n## 📊 Datos de Mercado\n- Precio: $50,000.00\n"))
	assert.Contains(t, out, "- Precio: $50,000.00")
	assert.Contains(t, out, "- Capitalización: $980.00B")
	assert.NotContains(t, out, "Volumen 24h")
	assert.Contains(t, out, "- Circulante: 19.50M BTC")
	assert.NotContains(t, out, "Máximo")
	// A reported zero is shown; a missing value is not.
	assert.Contains(t, out, "- Twitter: 0.00 seguidores")
	assert.NotContains(t, out, "Reddit")
	assert.Contains(t, out, "- Stars: 70000")
	assert.NotContains(t, out, "Forks")
	assert.Contains(t, out, "- Sitio web: https://bitcoin.org")
	assert.Contains(t, out, "- GitHub: https://github.com/bitcoin/bitcoin")
	assert.NotContains(t, out, "Explorer")
	assert.Contains(t, out, "Bitcoin is the first cryptocurrency.\n")
	assert.NotContains(t, out, "2009")
}

func TestFormatTokenInfo_Empty(t *testing.T) {
	r, _, _, _ := newRouter()
	out := r.formatTokenInfo(&models.TokenInfo{Name: "Nada", Symbol: "NADA"})
	assert.True(t, strings.HasPrefix(out, "# Nada (NADA)\n\n## 📝 Descripción\n"), out)
	assert.NotContains(t, out, "Datos de Mercado")
	assert.NotContains(t, out, "Suministro")
	assert.NotContains(t, out, "Comunidad")
	assert.NotContains(t, out, "Enlaces")
	assert.Contains(t, out, "No hay descripción disponible.")
}
