package catalog

import "strings"

// KeywordMapping is the curated keyword set for an entity-scoped lookup.
type KeywordMapping struct {
	Name           string
	PrimaryKeyword string
	Keywords       []string
}

// PlayerMappings are the curated mappings used by player_data lookups.
var PlayerMappings = []KeywordMapping{
	{
		Name:           "Lionel Messi",
		PrimaryKeyword: "messi",
		Keywords: []string{
			"messi", "lionel messi", "messi goals", "messi highlights",
			"messi jersey", "messi shirt", "messi soccer", "messi football",
			"messi transfer", "messi stats", "buy messi jersey",
		},
	},
	{
		Name:           "Cristiano Ronaldo",
		PrimaryKeyword: "ronaldo",
		Keywords: []string{
			"ronaldo", "cristiano ronaldo", "ronaldo goals", "ronaldo highlights",
			"ronaldo jersey", "ronaldo shirt", "ronaldo soccer", "ronaldo football",
			"cr7", "cr7 jersey", "buy ronaldo jersey",
		},
	},
	{
		Name:           "Kylian Mbappe",
		PrimaryKeyword: "mbappe",
		Keywords: []string{
			"mbappe", "kylian mbappe", "mbappe goals", "mbappe highlights",
			"mbappe jersey", "mbappe shirt", "mbappe soccer", "mbappe transfer",
			"mbappe real madrid", "buy mbappe jersey",
		},
	},
	{
		Name:           "Erling Haaland",
		PrimaryKeyword: "haaland",
		Keywords: []string{
			"haaland", "erling haaland", "haaland goals", "haaland highlights",
			"haaland jersey", "haaland shirt", "haaland manchester city",
			"haaland soccer", "buy haaland jersey",
		},
	},
	{
		Name:           "Jude Bellingham",
		PrimaryKeyword: "bellingham",
		Keywords: []string{
			"bellingham", "jude bellingham", "bellingham goals", "bellingham highlights",
			"bellingham jersey", "bellingham real madrid", "bellingham england",
			"buy bellingham jersey",
		},
	},
}

// FindMapping returns the curated mapping for a player, if any.
func FindMapping(name string) (KeywordMapping, bool) {
	for _, m := range PlayerMappings {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return KeywordMapping{}, false
}

// GeneratedMapping builds a mapping for a player without a curated one: the
// bare name plus the standard interest and merchandise variants.
func GeneratedMapping(name string) KeywordMapping {
	return KeywordMapping{
		Name:           name,
		PrimaryKeyword: name,
		Keywords: []string{
			name,
			name + " soccer",
			name + " football",
			name + " goals",
			name + " stats",
			name + " highlights",
			name + " transfer",
			name + " jersey",
			name + " shirt",
			name + " merchandise",
			name + " kit",
			name + " boots",
			"buy " + name + " jersey",
			name + " soccer jersey",
			name + " football shirt",
		},
	}
}
