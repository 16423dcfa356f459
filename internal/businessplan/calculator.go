package businessplan

import (
	"math"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

const (
	// NightsPerMonth is the fixed accounting month.
	NightsPerMonth = 30
	// AvgStayLength is the average booking length in nights.
	AvgStayLength = 3.0
	// PlatformCommission is charged on gross booking value.
	PlatformCommission = 0.15
	// DefaultTaxRate is the flat rate applied when no override is given.
	DefaultTaxRate = 0.21
)

// Calculator turns a cost structure and market conditions into a monthly projection.
// Inputs are trusted: negative costs or occupancy outside [0,1] are not rejected here.
type Calculator struct {
	Costs   domain.PropertyCosts
	Market  domain.MarketConditions
	TaxRate float64
}

func NewCalculator(costs domain.PropertyCosts, market domain.MarketConditions) *Calculator {
	return &Calculator{Costs: costs, Market: market, TaxRate: DefaultTaxRate}
}

// WithTaxRate returns a copy of the calculator using rate instead of the default.
func (c *Calculator) WithTaxRate(rate float64) *Calculator {
	cp := *c
	cp.TaxRate = rate
	return &cp
}

// Project computes the base-case monthly projection.
func (c *Calculator) Project() domain.MonthlyProjection {
	return project(c.Costs, c.Market, c.TaxRate)
}

func project(costs domain.PropertyCosts, market domain.MarketConditions, taxRate float64) domain.MonthlyProjection {
	occupiedNights := NightsPerMonth * market.OccupancyRate
	grossRevenue := occupiedNights * market.AvgPricePerNight
	netRevenue := grossRevenue * (1 - PlatformCommission)

	// cleaning is billed once per stay, not per night
	numStays := occupiedNights / AvgStayLength
	variableCosts := numStays * costs.CleaningPerStay

	// management takes its share of revenue after the platform commission
	mgmtFee := netRevenue * costs.PropertyManagementPercent

	fixed := costs.FixedMonthlyCosts()
	totalCosts := fixed + variableCosts + mgmtFee

	profitBeforeTax := netRevenue - totalCosts
	// Flat tax is applied to losses too, shrinking them. Modeling simplification.
	netProfit := profitBeforeTax * (1 - taxRate)

	var margin float64
	if netRevenue > 0 {
		margin = netProfit / netRevenue
	}

	// monthly rent stands in for the capital invested (leased property)
	var roi float64
	if annualInvestment := costs.MonthlyRent * 12; annualInvestment > 0 {
		roi = (netProfit * 12) / annualInvestment
	}

	return domain.MonthlyProjection{
		GrossRevenue:    grossRevenue,
		NetRevenue:      netRevenue,
		FixedCosts:      fixed,
		VariableCosts:   variableCosts,
		PropertyMgmtFee: mgmtFee,
		TotalCosts:      totalCosts,
		ProfitBeforeTax: profitBeforeTax,
		NetProfit:       netProfit,
		ProfitMargin:    margin,
		AnnualROI:       roi,
		BreakEvenNights: breakEvenNights(costs, market),
	}
}

// breakEvenNights is the number of booked nights whose contribution covers the
// fixed costs, clamped to [0, NightsPerMonth]. Pricing at or below the
// per-night variable cost never breaks even.
func breakEvenNights(costs domain.PropertyCosts, market domain.MarketConditions) int {
	revenuePerNight := market.AvgPricePerNight * (1 - PlatformCommission)
	costPerNight := costs.CleaningPerStay / AvgStayLength
	contribution := revenuePerNight - costPerNight
	if contribution <= 0 {
		return NightsPerMonth
	}

	nights := math.Trunc(costs.FixedMonthlyCosts() / contribution)
	switch {
	case math.IsNaN(nights) || nights > NightsPerMonth:
		return NightsPerMonth
	case nights < 0:
		return 0
	}
	return int(nights)
}
