package domain

import "time"

// PropertyCosts is the recurring monthly cost structure of one property.
// Amounts are non-negative currency values; validation is the caller's job.
type PropertyCosts struct {
	MonthlyRent               float64 `json:"monthly_rent" yaml:"monthly_rent"`
	CondoFees                 float64 `json:"condo_fees" yaml:"condo_fees"`
	Utilities                 float64 `json:"utilities" yaml:"utilities"`
	Wifi                      float64 `json:"wifi" yaml:"wifi"`
	CleaningPerStay           float64 `json:"cleaning_per_stay" yaml:"cleaning_per_stay"`
	Supplies                  float64 `json:"supplies" yaml:"supplies"`
	Insurance                 float64 `json:"insurance" yaml:"insurance"`
	PropertyManagementPercent float64 `json:"property_management_percent" yaml:"property_management_percent"` // fraction of net revenue
}

// FixedMonthlyCosts sums every cost except cleaning, which is billed per stay.
// Always derived from the fields so it cannot drift out of sync.
func (c PropertyCosts) FixedMonthlyCosts() float64 {
	return c.MonthlyRent +
		c.CondoFees +
		c.Utilities +
		c.Wifi +
		c.Supplies +
		c.Insurance
}

// MarketConditions describes rental demand in a zone.
type MarketConditions struct {
	AvgPricePerNight float64 `json:"avg_price_per_night"`
	OccupancyRate    float64 `json:"occupancy_rate"`
	// AvgStaysPerMonth is informational; the projection does not use it.
	AvgStaysPerMonth int `json:"avg_stays_per_month,omitempty"`
}

type MonthlyProjection struct {
	GrossRevenue    float64 `json:"gross_revenue"`
	NetRevenue      float64 `json:"net_revenue"`
	FixedCosts      float64 `json:"fixed_costs"`
	VariableCosts   float64 `json:"variable_costs"`
	PropertyMgmtFee float64 `json:"property_mgmt_fee"`
	TotalCosts      float64 `json:"total_costs"`
	ProfitBeforeTax float64 `json:"profit_before_tax"`
	NetProfit       float64 `json:"net_profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	AnnualROI       float64 `json:"annual_roi"`
	BreakEvenNights int     `json:"break_even_nights"`
}

// Scenario is one point of an occupancy sweep.
type Scenario struct {
	Label      string            `json:"label"`
	Multiplier float64           `json:"multiplier"`
	Occupancy  float64           `json:"occupancy_rate"`
	Projection MonthlyProjection `json:"projection"`
}

type Recommendation string

const (
	RecommendationGo   Recommendation = "GO"
	RecommendationNoGo Recommendation = "NO_GO"
)

type Confidence string

const (
	ConfidenceExcellent Confidence = "Excellent"
	ConfidenceHigh      Confidence = "High"
	ConfidenceMedium    Confidence = "Medium"
)

type DecisionResult struct {
	Recommendation Recommendation  `json:"recommendation"`
	Confidence     Confidence      `json:"confidence"`
	Score          int             `json:"score"`
	OptimalCount   int             `json:"optimal_count"`
	Reasons        []string        `json:"reasons"`
	Metrics        DecisionMetrics `json:"metrics"`
}

// DecisionMetrics are the measured values the criteria were checked against.
type DecisionMetrics struct {
	MonthlyProfit      float64 `json:"monthly_profit"`
	AnnualROI          float64 `json:"annual_roi"`
	RevenueToRentRatio float64 `json:"revenue_to_rent_ratio"`
	BreakEvenDays      int     `json:"break_even_days"`
}

// ZoneAnalysis is the reduced market picture of one neighbourhood.
type ZoneAnalysis struct {
	ZoneName            string             `json:"zone_name"`
	AvgPricePerNight    float64            `json:"avg_price_per_night"`
	MedianPricePerNight float64            `json:"median_price_per_night"`
	EstimatedOccupancy  float64            `json:"estimated_occupancy_rate"`
	TotalListings       int                `json:"total_listings"`
	ListingsPerType     map[string]int     `json:"listings_per_type"`
	PricePercentiles    map[string]float64 `json:"price_percentiles"`
}

// MarketConditions reduces the analysis to the two scalars the projection needs.
func (z ZoneAnalysis) MarketConditions() MarketConditions {
	return MarketConditions{
		AvgPricePerNight: z.AvgPricePerNight,
		OccupancyRate:    z.EstimatedOccupancy,
	}
}

// Zone is a stored market snapshot.
type Zone struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	Bedrooms  int       `json:"bedrooms,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ZoneAnalysis
}
