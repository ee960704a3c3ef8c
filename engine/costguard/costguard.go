// Package costguard refuses runs that would spend real money without
// permission or exceed the configured ceiling.
package costguard

import (
	"github.com/iconsports/demandscope/engine/domain"
)

// Config is the spending policy.
type Config struct {
	AllowRealMoney bool    `yaml:"allow_real_money"`
	MaxAllowedCost float64 `yaml:"max_allowed_cost"`
}

// Authorize checks a planned run before any provider call. live reports
// whether the provider bills real money.
func Authorize(estimatedCost float64, cfg Config, live bool) error {
	if live && !cfg.AllowRealMoney {
		return &domain.CostError{Estimated: estimatedCost, Limit: cfg.MaxAllowedCost, Wrapped: domain.ErrRealMoneyDisabled}
	}
	if estimatedCost > cfg.MaxAllowedCost {
		return &domain.CostError{Estimated: estimatedCost, Limit: cfg.MaxAllowedCost, Wrapped: domain.ErrCostLimitExceeded}
	}
	return nil
}
