package businessplan

import (
	"errors"
	"fmt"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

var ErrInvalidInput = errors.New("invalid input")

// ValidateInputs enforces the input domain the calculator assumes. Callers
// check inputs here before building a Calculator.
func ValidateInputs(c domain.PropertyCosts, m domain.MarketConditions, taxRate float64, multipliers []float64) error {
	amounts := []struct {
		name  string
		value float64
	}{
		{"monthly_rent", c.MonthlyRent},
		{"condo_fees", c.CondoFees},
		{"utilities", c.Utilities},
		{"wifi", c.Wifi},
		{"cleaning_per_stay", c.CleaningPerStay},
		{"supplies", c.Supplies},
		{"insurance", c.Insurance},
		{"avg_price_per_night", m.AvgPricePerNight},
	}
	for _, a := range amounts {
		if a.value < 0 {
			return invalid("%s must be >= 0", a.name)
		}
	}
	if c.PropertyManagementPercent < 0 || c.PropertyManagementPercent > 1 {
		return invalid("property_management_percent must be within [0,1]")
	}
	if m.OccupancyRate < 0 || m.OccupancyRate > 1 {
		return invalid("occupancy_rate must be within [0,1]")
	}
	if taxRate < 0 || taxRate >= 1 {
		return invalid("tax_rate must be within [0,1)")
	}
	for _, v := range multipliers {
		if v < 0 {
			return invalid("multipliers must be >= 0")
		}
	}
	return nil
}

// invalid wraps ErrInvalidInput while keeping the message free of the prefix.
func invalid(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }
