package businessplan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Policy holds the investment thresholds. Each criterion has a pass bound and a
// stricter optimal bound.
type Policy struct {
	MinROI                 float64 `yaml:"min_roi" json:"min_roi"`
	OptimalROI             float64 `yaml:"optimal_roi" json:"optimal_roi"`
	MinRevenueToRent       float64 `yaml:"min_revenue_to_rent" json:"min_revenue_to_rent"`
	OptimalRevenueToRent   float64 `yaml:"optimal_revenue_to_rent" json:"optimal_revenue_to_rent"`
	MaxBreakEvenNights     int     `yaml:"max_break_even_nights" json:"max_break_even_nights"`
	OptimalBreakEvenNights int     `yaml:"optimal_break_even_nights" json:"optimal_break_even_nights"`
}

// DefaultPolicy returns the standard go/no-go thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinROI:                 0.40,
		OptimalROI:             0.60,
		MinRevenueToRent:       2.5,
		OptimalRevenueToRent:   3.0,
		MaxBreakEvenNights:     10,
		OptimalBreakEvenNights: 8,
	}
}

// Validate checks that bounds are non-negative and that every optimal bound is
// at least as strict as its pass bound.
func (p Policy) Validate() error {
	if p.MinROI < 0 || p.MinRevenueToRent < 0 {
		return fmt.Errorf("min_roi %.2f and min_revenue_to_rent %.2f must not be negative", p.MinROI, p.MinRevenueToRent)
	}
	if p.OptimalBreakEvenNights < 0 {
		return fmt.Errorf("optimal_break_even_nights %d must not be negative", p.OptimalBreakEvenNights)
	}
	if p.OptimalROI < p.MinROI {
		return fmt.Errorf("optimal_roi %.2f is below min_roi %.2f", p.OptimalROI, p.MinROI)
	}
	if p.OptimalRevenueToRent < p.MinRevenueToRent {
		return fmt.Errorf("optimal_revenue_to_rent %.2f is below min_revenue_to_rent %.2f", p.OptimalRevenueToRent, p.MinRevenueToRent)
	}
	if p.OptimalBreakEvenNights > p.MaxBreakEvenNights {
		return fmt.Errorf("optimal_break_even_nights %d exceeds max_break_even_nights %d", p.OptimalBreakEvenNights, p.MaxBreakEvenNights)
	}
	if p.MaxBreakEvenNights < 0 || p.MaxBreakEvenNights > NightsPerMonth {
		return fmt.Errorf("max_break_even_nights %d outside [0, %d]", p.MaxBreakEvenNights, NightsPerMonth)
	}
	return nil
}

// LoadPolicyFromFile reads a YAML policy over the defaults. On any error the
// defaults are returned together with the error.
func LoadPolicyFromFile(path string) (Policy, error) {
	p := DefaultPolicy()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return DefaultPolicy(), fmt.Errorf("unmarshal policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return DefaultPolicy(), fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}
