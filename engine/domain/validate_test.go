package domain

import (
	"errors"
	"testing"
)

func TestValidateNames(t *testing.T) {
	if err := ValidateNames("players", []string{"Pedri", "Gavi"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	err := ValidateNames("players", nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "players" {
		t.Fatalf("expected ConfigError on players, got %#v", err)
	}
	if err := ValidateNames("terms", []string{"shirt", "  "}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected blank entry rejection, got %v", err)
	}
}

func TestValidateMarkets(t *testing.T) {
	ok := []Market{{Name: "United States", LocationCode: 2840}, {Name: "Germany", LocationCode: 2276}}
	if err := ValidateMarkets(ok); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	cases := map[string][]Market{
		"empty":     nil,
		"blank":     {{Name: "", LocationCode: 1}},
		"zero code": {{Name: "X", LocationCode: 0}},
		"duplicate": {{Name: "X", LocationCode: 1}, {Name: "X", LocationCode: 2}},
	}
	for name, markets := range cases {
		if err := ValidateMarkets(markets); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: expected ErrInvalidConfiguration, got %v", name, err)
		}
	}
}

func TestValidateDateRange(t *testing.T) {
	dr, err := ValidateDateRange("", "")
	if err != nil || dr != nil {
		t.Fatalf("expected nil range, got %v %v", dr, err)
	}
	dr, err = ValidateDateRange("2025-01-01", "2025-07-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dr.From != "2025-01-01" || dr.To != "2025-07-31" {
		t.Fatalf("unexpected range %+v", dr)
	}
	for _, c := range [][2]string{{"2025-01-01", ""}, {"bad", "2025-01-01"}, {"2025-08-01", "2025-07-01"}} {
		if _, err := ValidateDateRange(c[0], c[1]); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%v: expected ErrInvalidConfiguration, got %v", c, err)
		}
	}
}

func TestKeywordRecordVolume(t *testing.T) {
	if (KeywordRecord{}).Volume() != 0 {
		t.Fatal("absent volume should be zero")
	}
	v := int64(120)
	if (KeywordRecord{SearchVolume: &v}).Volume() != 120 {
		t.Fatal("expected 120")
	}
	neg := int64(-4)
	if (KeywordRecord{SearchVolume: &neg}).Volume() != 0 {
		t.Fatal("negative volume should clamp to zero")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	pe := &ProviderError{Market: "Germany", BatchIndex: 2, Err: cause}
	if !errors.Is(pe, ErrProvider) || !errors.Is(pe, cause) {
		t.Fatalf("ProviderError should wrap both sentinel and cause")
	}
	ce := &CostError{Estimated: 3, Limit: 1, Wrapped: ErrCostLimitExceeded}
	if !errors.Is(ce, ErrCostLimitExceeded) {
		t.Fatal("CostError should unwrap to its sentinel")
	}
	if Keyword("Pedri", "shirt") != "Pedri shirt" {
		t.Fatal("unexpected keyword format")
	}
}
