package businessplan

import (
	"math"
	"strconv"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// DefaultScenarioMultipliers is the occupancy sweep used when none is given.
var DefaultScenarioMultipliers = []float64{0.70, 0.85, 1.00, 1.15}

// Scenarios projects the property once per occupancy multiplier. Multipliers
// scale the current occupancy rate. Each run works on its own copy of the
// market conditions, so c.Market is never touched. Results keep input order,
// duplicates included.
func (c *Calculator) Scenarios(multipliers []float64) []domain.Scenario {
	out := make([]domain.Scenario, 0, len(multipliers))
	for _, m := range multipliers {
		market := c.Market
		market.OccupancyRate = c.Market.OccupancyRate * m

		out = append(out, domain.Scenario{
			Label:      ScenarioLabel(m),
			Multiplier: m,
			Occupancy:  market.OccupancyRate,
			Projection: project(c.Costs, market, c.TaxRate),
		})
	}
	return out
}

// ScenarioLabel renders a multiplier as a percentage, e.g. 0.85 -> "85%".
func ScenarioLabel(multiplier float64) string {
	return strconv.Itoa(int(math.Round(multiplier*100))) + "%"
}
