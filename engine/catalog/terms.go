package catalog

// ApprovedMerchTerms are the company-approved merchandise modifiers combined
// with player names to form keywords.
var ApprovedMerchTerms = []string{
	"shirt",
	"jersey",
	"signed shirt",
	"signed jersey",
	"signed",
	"autograph",
	"autographed",
	"memorabilia",
	"boots",
	"cleats",
	"card",
	"poster",
	"signed photo",
	"authentic",
	"official",
	"framed",
	"signed ball",
	"collectibles",
	"autographed shirt",
	"autographed jersey",
	"signature",
	"coins",
	"exclusive",
	"dedication",
	"artwork",
	"signed art",
	"sports memorabilia",
	"soccer memorabilia",
	"football memorabilia",
	"limited edition",
}

// SuffixVocabulary is the word list the pattern resolver recognises after a
// free-text player name in externally sourced keywords.
var SuffixVocabulary = []string{
	"shirt", "jersey", "signed", "autograph", "memorabilia", "boots", "cleats",
	"card", "poster", "authentic", "official", "framed", "ball", "collectibles",
	"signature", "coins", "exclusive", "dedication", "artwork", "art", "sports",
	"soccer", "football", "limited", "edition",
}

// MerchIndicators mark a keyword as merchandise interest rather than interest
// in the player.
var MerchIndicators = []string{
	"shirt", "jersey", "signed", "autograph", "autographed", "memorabilia",
	"boots", "cleats", "card", "poster", "authentic", "official", "framed",
	"ball", "collectibles", "signature", "coins", "exclusive", "dedication",
	"artwork", "art", "limited", "edition", "merchandise", "merch", "kit",
	"buy", "photo",
}
