package dataforseo

import (
	"encoding/json"
	"strconv"
)

// Task is one element of the request body array.
type Task struct {
	Keywords     []string `json:"keywords"`
	LocationCode int      `json:"location_code"`
	LanguageCode string   `json:"language_code"`
	DateFrom     string   `json:"date_from,omitempty"`
	DateTo       string   `json:"date_to,omitempty"`
}

// MonthlySearch is one month of volume, most recent first.
type MonthlySearch struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	SearchVolume int64 `json:"search_volume"`
}

// Record is one keyword result. Nullable numeric fields are pointers.
type Record struct {
	Keyword          string          `json:"keyword"`
	LocationCode     int             `json:"location_code"`
	LanguageCode     string          `json:"language_code"`
	SearchVolume     *int64          `json:"search_volume"`
	Competition      Competition     `json:"competition"`
	CompetitionIndex *float64        `json:"competition_index"`
	CPC              *float64        `json:"cpc"`
	MonthlySearches  []MonthlySearch `json:"monthly_searches"`
}

// Competition is reported as a level ("LOW", "MEDIUM", "HIGH") by Google Ads
// and as a 0-1 number by older endpoints. Both decode into a string.
type Competition string

func (c *Competition) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Competition(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Competition(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type response struct {
	Version       string  `json:"version"`
	StatusCode    int     `json:"status_code"`
	StatusMessage string  `json:"status_message"`
	Cost          float64 `json:"cost"`
	Tasks         []struct {
		ID            string   `json:"id"`
		StatusCode    int      `json:"status_code"`
		StatusMessage string   `json:"status_message"`
		Cost          float64  `json:"cost"`
		Result        []Record `json:"result"`
	} `json:"tasks"`
}
