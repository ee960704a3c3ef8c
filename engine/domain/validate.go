package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidateNames checks that a mandatory name list is non-empty and has no blank entries.
func ValidateNames(field string, names []string) error {
	if len(names) == 0 {
		return NewConfigError(field, "must not be empty")
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return NewConfigError(field, "contains a blank entry")
		}
	}
	return nil
}

// ValidateMarkets checks market names and location codes.
func ValidateMarkets(markets []Market) error {
	if len(markets) == 0 {
		return NewConfigError("markets", "must not be empty")
	}
	seen := make(map[string]bool, len(markets))
	for _, m := range markets {
		if strings.TrimSpace(m.Name) == "" {
			return NewConfigError("markets", "market name is blank")
		}
		if m.LocationCode <= 0 {
			return NewConfigError("markets", "location code for "+m.Name+" must be positive")
		}
		if seen[m.Name] {
			return NewConfigError("markets", "duplicate market "+m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// ValidateDateRange checks an optional YYYY-MM-DD window. Both bounds must be
// set together and from must not be after to.
func ValidateDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, NewConfigError("dateRange", "both from and to are required")
	}
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, NewConfigError("dateRange.from", "expected YYYY-MM-DD")
	}
	t, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, NewConfigError("dateRange.to", "expected YYYY-MM-DD")
	}
	if f.After(t) {
		return nil, NewConfigError("dateRange", "from is after to")
	}
	return &DateRange{From: from, To: to}, nil
}
