package catalog

import (
	"strings"

	"github.com/iconsports/demandscope/engine/domain"
)

// Provider location codes.
const (
	LocationUS        = 2840
	LocationUK        = 2826
	LocationGermany   = 2276
	LocationSpain     = 2724
	LocationFrance    = 2250
	LocationItaly     = 2380
	LocationBrazil    = 2076
	LocationMexico    = 2484
	LocationCanada    = 2124
	LocationAustralia = 2036
)

// Markets lists every market the dashboard knows about.
var Markets = []domain.Market{
	{Name: "United States", LocationCode: LocationUS},
	{Name: "United Kingdom", LocationCode: LocationUK},
	{Name: "Germany", LocationCode: LocationGermany},
	{Name: "Spain", LocationCode: LocationSpain},
	{Name: "France", LocationCode: LocationFrance},
	{Name: "Italy", LocationCode: LocationItaly},
	{Name: "Brazil", LocationCode: LocationBrazil},
	{Name: "Mexico", LocationCode: LocationMexico},
	{Name: "Canada", LocationCode: LocationCanada},
	{Name: "Australia", LocationCode: LocationAustralia},
}

// PriorityMarkets are the markets used for production runs, in run order.
var PriorityMarkets = []domain.Market{
	{Name: "United States", LocationCode: LocationUS},
	{Name: "United Kingdom", LocationCode: LocationUK},
	{Name: "Mexico", LocationCode: LocationMexico},
	{Name: "Australia", LocationCode: LocationAustralia},
	{Name: "Germany", LocationCode: LocationGermany},
}

// Micro test sizing.
const (
	MicroTestPlayers = 5
	MicroTestMarkets = 2
)

// FindMarket resolves a market by name (case-insensitive) among all known markets.
func FindMarket(name string) (domain.Market, bool) {
	for _, m := range Markets {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return domain.Market{}, false
}

// MarketByCode resolves a market by its location code.
func MarketByCode(code int) (domain.Market, bool) {
	for _, m := range Markets {
		if m.LocationCode == code {
			return m, true
		}
	}
	return domain.Market{}, false
}

// ResolveMarkets maps names to markets. Unknown names are returned separately.
func ResolveMarkets(names []string) ([]domain.Market, []string) {
	var found []domain.Market
	var unknown []string
	for _, n := range names {
		if m, ok := FindMarket(n); ok {
			found = append(found, m)
		} else {
			unknown = append(unknown, n)
		}
	}
	return found, unknown
}
