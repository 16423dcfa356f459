package businessplan

import (
	"fmt"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// Recommend projects the base case and classifies it with the default policy.
func (c *Calculator) Recommend() domain.DecisionResult {
	return c.RecommendWith(DefaultPolicy())
}

func (c *Calculator) RecommendWith(policy Policy) domain.DecisionResult {
	return Evaluate(policy, c.Project(), c.Costs.MonthlyRent)
}

// RevenueToRent is post-commission monthly revenue over monthly rent, 0 without rent.
func RevenueToRent(p domain.MonthlyProjection, monthlyRent float64) float64 {
	if monthlyRent <= 0 {
		return 0
	}
	return p.GrossRevenue * (1 - PlatformCommission) / monthlyRent
}

type criterion struct {
	label     string
	value     float64
	minimum   float64
	optimal   float64
	lowerWins bool
	showValue func(float64) string
	showBound func(float64) string
}

func (c criterion) meets(bound float64) bool {
	if c.lowerWins {
		return c.value <= bound
	}
	return c.value >= bound
}

// verdict returns (passed, optimal, line).
func (c criterion) verdict() (bool, bool, string) {
	v := c.showValue(c.value)
	cmp, limit, miss := "≥", "minimum", "below"
	if c.lowerWins {
		cmp, limit, miss = "≤", "maximum", "exceeds"
	}

	switch {
	case c.meets(c.optimal):
		return true, true, fmt.Sprintf("✓ %s %s is OPTIMAL (%s%s)", c.label, v, cmp, c.showBound(c.optimal))
	case c.meets(c.minimum):
		return true, false, fmt.Sprintf("✓ %s %s meets %s %s", c.label, v, limit, c.showBound(c.minimum))
	default:
		return false, false, fmt.Sprintf("✗ %s %s %s %s %s", c.label, v, miss, limit, c.showBound(c.minimum))
	}
}

// Evaluate scores a projection against the policy. GO requires every pass bound;
// confidence grades a GO by how many criteria are optimal. A NO_GO is always
// reported with High confidence.
func Evaluate(policy Policy, p domain.MonthlyProjection, monthlyRent float64) domain.DecisionResult {
	ratio := RevenueToRent(p, monthlyRent)

	criteria := []criterion{
		{"ROI", p.AnnualROI, policy.MinROI, policy.OptimalROI, false, percent1, percent0},
		{"Revenue/Rent", ratio, policy.MinRevenueToRent, policy.OptimalRevenueToRent, false, times1, times1},
		{"Break-even", float64(p.BreakEvenNights), float64(policy.MaxBreakEvenNights), float64(policy.OptimalBreakEvenNights), true, days, whole},
	}

	res := domain.DecisionResult{
		Reasons: make([]string, 0, len(criteria)),
		Metrics: domain.DecisionMetrics{
			MonthlyProfit:      p.NetProfit,
			AnnualROI:          p.AnnualROI,
			RevenueToRentRatio: ratio,
			BreakEvenDays:      p.BreakEvenNights,
		},
	}
	for _, c := range criteria {
		passed, optimal, line := c.verdict()
		if passed {
			res.Score++
		}
		if optimal {
			res.OptimalCount++
		}
		res.Reasons = append(res.Reasons, line)
	}

	res.Recommendation = domain.RecommendationNoGo
	res.Confidence = domain.ConfidenceHigh
	if res.Score == len(criteria) {
		res.Recommendation = domain.RecommendationGo
		switch {
		case res.OptimalCount == len(criteria):
			res.Confidence = domain.ConfidenceExcellent
		case res.OptimalCount == 2:
			res.Confidence = domain.ConfidenceHigh
		default:
			res.Confidence = domain.ConfidenceMedium
		}
	}
	return res
}

func percent1(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func percent0(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func times1(v float64) string {
	return fmt.Sprintf("%.1fx", v)
}

func days(v float64) string {
	return fmt.Sprintf("%d days", int(v))
}

func whole(v float64) string {
	return fmt.Sprintf("%d", int(v))
}
