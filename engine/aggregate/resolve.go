package aggregate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iconsports/demandscope/engine/domain"
)

// EntityResolver maps a keyword back to the entity it describes.
type EntityResolver interface {
	Resolve(keyword string) (entity string, ok bool)
}

// ExactMapResolver resolves keywords by case-insensitive lookup in a table
// built from known entity keywords.
type ExactMapResolver struct {
	index map[string]string
}

// NewExactMapResolver indexes every "{entity} {term}" keyword.
func NewExactMapResolver(entities, terms []string) *ExactMapResolver {
	r := &ExactMapResolver{index: make(map[string]string, len(entities)*len(terms))}
	for _, e := range entities {
		for _, t := range terms {
			r.Add(e, domain.Keyword(e, t))
		}
	}
	return r
}

// Add registers explicit keywords for an entity. Later registrations of the
// same keyword win.
func (r *ExactMapResolver) Add(entity string, keywords ...string) {
	if r.index == nil {
		r.index = make(map[string]string)
	}
	for _, k := range keywords {
		r.index[normalize(k)] = entity
	}
}

// Len returns the number of indexed keywords.
func (r *ExactMapResolver) Len() int { return len(r.index) }

func (r *ExactMapResolver) Resolve(keyword string) (string, bool) {
	e, ok := r.index[normalize(keyword)]
	return e, ok
}

// PatternResolver captures a leading free-text name followed by a word from
// a suffix vocabulary, e.g. "Federico Valverde signed shirt". It is meant
// for keyword lists the caller did not generate.
type PatternResolver struct {
	re        *regexp.Regexp
	canonical map[string]string
}

// NewPatternResolver compiles the vocabulary into a matcher. Names found in
// known are returned in their canonical spelling; others are returned as
// captured.
func NewPatternResolver(vocabulary, known []string) (*PatternResolver, error) {
	if len(vocabulary) == 0 {
		return nil, domain.NewConfigError("vocabulary", "must not be empty")
	}
	alts := make([]string, len(vocabulary))
	for i, v := range vocabulary {
		alts[i] = regexp.QuoteMeta(v)
	}
	re, err := regexp.Compile(fmt.Sprintf(`(?i)^([\p{L}\s.'-]+?)\s+(?:%s)\b`, strings.Join(alts, "|")))
	if err != nil {
		return nil, fmt.Errorf("compile suffix pattern: %w", err)
	}
	p := &PatternResolver{re: re, canonical: make(map[string]string, len(known))}
	for _, k := range known {
		p.canonical[normalize(k)] = k
	}
	return p, nil
}

// Alias makes captured names that match any of aliases resolve to name,
// e.g. "messi" to "Lionel Messi".
func (p *PatternResolver) Alias(name string, aliases ...string) {
	for _, a := range aliases {
		p.canonical[normalize(a)] = name
	}
}

func (p *PatternResolver) Resolve(keyword string) (string, bool) {
	m := p.re.FindStringSubmatch(strings.TrimSpace(keyword))
	if m == nil {
		return "", false
	}
	name := strings.Join(strings.Fields(m[1]), " ")
	if name == "" {
		return "", false
	}
	if c, ok := p.canonical[normalize(name)]; ok {
		return c, true
	}
	return name, true
}

// Chain tries each resolver in order.
type Chain []EntityResolver

func (c Chain) Resolve(keyword string) (string, bool) {
	for _, r := range c {
		if e, ok := r.Resolve(keyword); ok {
			return e, true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
