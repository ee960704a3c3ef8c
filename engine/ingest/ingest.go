// Package ingest reads keyword research exports (SEMrush-style CSV reports)
// into keyword records grouped by market, so they can be aggregated and
// scored like provider results.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iconsports/demandscope/engine/aggregate"
	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/domain"
)

// Report column headers. Matching is case-insensitive.
const (
	ColKeyword     = "Keyword"
	ColVolume      = "Avg. monthly searches"
	ColCompetition = "Competition"
	ColTrend       = "YoY change"
	ColCountry     = "Country"
)

// volume column names accepted besides ColVolume.
var volumeAliases = []string{"search volume", "volume"}

// Row is one usable line of a report.
type Row struct {
	Keyword     string
	Volume      int64
	Competition string
	Country     string
	// Trend is the year-over-year change in percent. HasTrend is false when
	// the report left it blank or unbounded.
	Trend    float64
	HasTrend bool
}

// ReadCSV parses a report. Lines without a keyword or a volume are skipped.
// The keyword and volume columns are required; the rest are optional.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewConfigError("report", "empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read report header: %w", err)
	}
	cols := indexHeader(header)
	kwCol, ok := cols[strings.ToLower(ColKeyword)]
	if !ok {
		return nil, domain.NewConfigError("report", "missing column "+ColKeyword)
	}
	volCol, ok := cols[strings.ToLower(ColVolume)]
	for _, alias := range volumeAliases {
		if ok {
			break
		}
		volCol, ok = cols[alias]
	}
	if !ok {
		return nil, domain.NewConfigError("report", "missing column "+ColVolume)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		kw := strings.TrimSpace(field(rec, kwCol))
		rawVol := strings.TrimSpace(field(rec, volCol))
		if kw == "" || rawVol == "" {
			continue
		}
		row := Row{
			Keyword:     kw,
			Volume:      ParseVolume(rawVol),
			Competition: strings.TrimSpace(lookup(rec, cols, ColCompetition)),
			Country:     strings.TrimSpace(lookup(rec, cols, ColCountry)),
		}
		row.Trend, row.HasTrend = ParseTrend(lookup(rec, cols, ColTrend))
		rows = append(rows, row)
	}
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func lookup(rec []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return field(rec, i)
}

// ParseVolume reads an exact figure ("1,900"), an abbreviated one ("12K")
// or a range ("1K-10K", "1000–5000"), returning the floor of a range's
// midpoint. Unreadable values are 0.
func ParseVolume(s string) int64 {
	s = strings.NewReplacer(",", "", " ", "", "–", "-", "—", "-").Replace(strings.TrimSpace(s))
	if lo, hi, ok := strings.Cut(s, "-"); ok && lo != "" {
		return (parseAmount(lo) + parseAmount(hi)) / 2
	}
	return parseAmount(s)
}

func parseAmount(s string) int64 {
	s = strings.TrimRight(strings.ToUpper(s), "+")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		mult, s = 1e3, strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult, s = 1e6, strings.TrimSuffix(s, "M")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f * mult)
}

// ParseTrend reads a percentage such as "+12.5%". Blank, "-" and "∞" carry
// no trend.
func ParseTrend(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "∞" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Grouped is a report split by market, ready for aggregation.
type Grouped struct {
	Records map[string][]domain.KeywordRecord
	// Markets lists market names in first-seen order.
	Markets []string
	// Unknown lists countries missing from the market catalog. Their rows
	// are kept under the country name with no location code.
	Unknown []string
	// Skipped counts rows dropped for a zero volume.
	Skipped int

	trends map[string][]trendPoint
}

type trendPoint struct {
	value float64
	ok    bool
}

// Group assigns rows to markets by their country, using fallback for rows
// without one.
func Group(rows []Row, fallback domain.Market) Grouped {
	g := Grouped{
		Records: make(map[string][]domain.KeywordRecord),
		trends:  make(map[string][]trendPoint),
	}

	var countries []string
	seen := make(map[string]bool)
	for _, r := range rows {
		key := strings.ToLower(r.Country)
		if r.Country != "" && !seen[key] {
			seen[key] = true
			countries = append(countries, r.Country)
		}
	}
	found, unknown := catalog.ResolveMarkets(countries)
	markets := make(map[string]domain.Market, len(countries))
	for _, m := range found {
		markets[strings.ToLower(m.Name)] = m
	}
	for _, name := range unknown {
		markets[strings.ToLower(name)] = domain.Market{Name: name}
	}
	g.Unknown = unknown

	for _, r := range rows {
		if r.Volume <= 0 {
			g.Skipped++
			continue
		}
		m := fallback
		if r.Country != "" {
			m = markets[strings.ToLower(r.Country)]
		}
		if _, ok := g.Records[m.Name]; !ok {
			g.Markets = append(g.Markets, m.Name)
		}
		vol := r.Volume
		g.Records[m.Name] = append(g.Records[m.Name], domain.KeywordRecord{
			Keyword:      r.Keyword,
			LocationCode: m.LocationCode,
			SearchVolume: &vol,
			Competition:  r.Competition,
		})
		g.trends[m.Name] = append(g.trends[m.Name], trendPoint{value: r.Trend, ok: r.HasTrend})
	}
	return g
}

// Trends averages the reported year-over-year change of every resolved
// record, per entity and market.
func (g Grouped) Trends(r aggregate.EntityResolver) map[string]map[string]float64 {
	type sum struct {
		total float64
		n     int
	}
	sums := make(map[string]map[string]*sum)
	for market, recs := range g.Records {
		for i, rec := range recs {
			tp := g.trends[market][i]
			if !tp.ok {
				continue
			}
			entity, ok := r.Resolve(rec.Keyword)
			if !ok {
				continue
			}
			if sums[entity] == nil {
				sums[entity] = make(map[string]*sum)
			}
			s := sums[entity][market]
			if s == nil {
				s = &sum{}
				sums[entity][market] = s
			}
			s.total += tp.value
			s.n++
		}
	}

	out := make(map[string]map[string]float64, len(sums))
	for entity, byMarket := range sums {
		out[entity] = make(map[string]float64, len(byMarket))
		for market, s := range byMarket {
			out[entity][market] = s.total / float64(s.n)
		}
	}
	return out
}

// ApplyTrends overwrites each market trend from trends and sets the profile
// trend to the mean across its markets. Markets without a reported trend
// count as 0.
func ApplyTrends(profiles []domain.EntityProfile, trends map[string]map[string]float64) {
	for i := range profiles {
		p := &profiles[i]
		var total float64
		for j := range p.Markets {
			mm := &p.Markets[j]
			mm.TrendPercent = trends[p.Name][mm.Market]
			total += mm.TrendPercent
		}
		p.TrendPercent = 0
		if len(p.Markets) > 0 {
			p.TrendPercent = total / float64(len(p.Markets))
		}
	}
}
