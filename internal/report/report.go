// Package report renders an analysis as plain text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// Input is one analysis to render. Costs, Market, TaxRate and Policy are only
// read by WriteWorkbook; a zero Policy means the default thresholds.
type Input struct {
	Title      string
	Costs      domain.PropertyCosts
	Market     domain.MarketConditions
	TaxRate    float64
	Policy     businessplan.Policy
	Projection domain.MonthlyProjection
	Scenarios  []domain.Scenario
	Decision   *domain.DecisionResult
}

// Money formats an amount in euros, rounded half-up to cents.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-€" + d.Neg().StringFixed(2)
	}
	return "€" + d.StringFixed(2)
}

// Percent formats a fraction with one decimal, e.g. 0.3262 -> "32.6%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(1) + "%"
}

func Render(w io.Writer, in Input) error {
	bw := bufio.NewWriter(w)
	p := in.Projection

	if in.Title != "" {
		fmt.Fprintf(bw, "%s\n\n", in.Title)
	}
	fmt.Fprintln(bw, "=== Monthly Business Projection ===")
	fmt.Fprintf(bw, "Gross revenue: %s\n", Money(p.GrossRevenue))
	fmt.Fprintf(bw, "Net revenue: %s\n", Money(p.NetRevenue))
	fmt.Fprintf(bw, "Total costs: %s\n", Money(p.TotalCosts))
	fmt.Fprintf(bw, "  - Fixed: %s\n", Money(p.FixedCosts))
	fmt.Fprintf(bw, "  - Variable: %s\n", Money(p.VariableCosts))
	fmt.Fprintf(bw, "  - Property mgmt: %s\n", Money(p.PropertyMgmtFee))
	fmt.Fprintf(bw, "Net profit: %s\n", Money(p.NetProfit))
	fmt.Fprintf(bw, "Profit margin: %s\n", Percent(p.ProfitMargin))
	fmt.Fprintf(bw, "Annual ROI: %s\n", Percent(p.AnnualROI))
	fmt.Fprintf(bw, "Break-even nights: %d/30\n", p.BreakEvenNights)

	if len(in.Scenarios) > 0 {
		fmt.Fprintln(bw, "\n=== Occupancy Scenarios ===")
		tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Scenario\tOccupancy\tGross revenue\tNet profit\tAnnual ROI")
		for _, s := range in.Scenarios {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				s.Label, Percent(s.Occupancy), Money(s.Projection.GrossRevenue),
				Money(s.Projection.NetProfit), Percent(s.Projection.AnnualROI))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if d := in.Decision; d != nil {
		fmt.Fprintln(bw, "\n=== Decision Recommendation ===")
		fmt.Fprintf(bw, "Recommendation: %s (%s confidence)\n", d.Recommendation, d.Confidence)
		fmt.Fprintf(bw, "Score: %d/3 (optimal %d/3)\n", d.Score, d.OptimalCount)
		fmt.Fprintln(bw, "\nAnalysis:")
		for _, r := range d.Reasons {
			fmt.Fprintf(bw, "  %s\n", r)
		}
	}

	return bw.Flush()
}
