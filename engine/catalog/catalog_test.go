package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, Players, 125)
	assert.Len(t, ApprovedMerchTerms, 30)
	assert.Len(t, PriorityMarkets, 5)
	assert.Len(t, PlayerNames(), len(Players))
}

func TestPlayerNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range PlayerNames() {
		assert.False(t, seen[n], "duplicate player %q", n)
		seen[n] = true
	}
}

func TestFindMarket(t *testing.T) {
	m, ok := FindMarket("germany")
	require.True(t, ok)
	assert.Equal(t, LocationGermany, m.LocationCode)

	m, ok = MarketByCode(LocationUS)
	require.True(t, ok)
	assert.Equal(t, "United States", m.Name)

	found, unknown := ResolveMarkets([]string{"Mexico", "Atlantis"})
	require.Len(t, found, 1)
	assert.Equal(t, LocationMexico, found[0].LocationCode)
	assert.Equal(t, []string{"Atlantis"}, unknown)
}

func TestMappings(t *testing.T) {
	m, ok := FindMapping("erling haaland")
	require.True(t, ok)
	assert.Equal(t, "haaland", m.PrimaryKeyword)
	assert.Contains(t, m.Keywords, m.PrimaryKeyword)

	g := GeneratedMapping("Pedri")
	assert.Equal(t, "Pedri", g.PrimaryKeyword)
	assert.Contains(t, g.Keywords, "buy Pedri jersey")
	assert.Len(t, g.Keywords, 15)
}

func TestFindPlayer(t *testing.T) {
	p, ok := FindPlayer("pedri")
	require.True(t, ok)
	assert.Equal(t, "Barcelona", p.Team)
	_, ok = FindPlayer("Nobody")
	assert.False(t, ok)
}
