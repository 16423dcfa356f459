package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// FallbackOccupancy is used when no calendar data covers the zone.
const FallbackOccupancy = 0.65

var (
	ErrNoListings     = errors.New("no listings found for zone")
	ErrNoBedroomMatch = errors.New("no listings with requested bedrooms")
	ErrNoPrices       = errors.New("no priced listings in zone")
)

// Analyzer reduces raw listings and calendar data to zone statistics.
// Calendar may be nil when calendar data is unavailable.
type Analyzer struct {
	Listings []Listing
	Calendar CalendarSummary
}

func NewAnalyzer(listings []Listing, calendar CalendarSummary) *Analyzer {
	return &Analyzer{Listings: listings, Calendar: calendar}
}

// LoadDataset reads listings (required) and calendar (optional) from a dataset.
// A calendar that fails to load is logged and left nil.
func LoadDataset(ctx context.Context, client *http.Client, ds Dataset) (*Analyzer, error) {
	rc, err := Open(ctx, client, ds.Listings)
	if err != nil {
		return nil, fmt.Errorf("open listings: %w", err)
	}
	listings, err := ReadListings(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	log.Printf("market: loaded %d listings from %s", len(listings), ds.Listings)

	a := NewAnalyzer(listings, nil)
	if ds.Calendar == "" {
		return a, nil
	}

	rc, err = Open(ctx, client, ds.Calendar)
	if err != nil {
		log.Printf("market: calendar unavailable, using fallback occupancy %.2f (reason: %v)", FallbackOccupancy, err)
		return a, nil
	}
	defer rc.Close()
	cal, err := ReadCalendar(rc)
	if err != nil {
		log.Printf("market: calendar unreadable, using fallback occupancy %.2f (reason: %v)", FallbackOccupancy, err)
		return a, nil
	}
	a.Calendar = cal
	log.Printf("market: loaded calendar for %d listings", len(cal))
	return a, nil
}

// AnalyzeZone filters listings whose neighbourhood contains query
// (case-insensitive), optionally by bedroom count, and summarises them.
func (a *Analyzer) AnalyzeZone(query string, bedrooms *int) (domain.ZoneAnalysis, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	var zone []Listing
	for _, l := range a.Listings {
		if strings.Contains(strings.ToLower(l.Neighbourhood), q) {
			zone = append(zone, l)
		}
	}
	if len(zone) == 0 {
		return domain.ZoneAnalysis{}, fmt.Errorf("%w: %s", ErrNoListings, query)
	}

	if bedrooms != nil {
		filtered := zone[:0:0]
		for _, l := range zone {
			if l.Bedrooms == *bedrooms {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) == 0 {
			return domain.ZoneAnalysis{}, fmt.Errorf("%w: %d bedrooms in %s", ErrNoBedroomMatch, *bedrooms, query)
		}
		zone = filtered
	}

	prices := make(stats.Float64Data, 0, len(zone))
	ids := make([]string, 0, len(zone))
	types := make(map[string]int)
	names := make(map[string]int)
	for _, l := range zone {
		if l.HasPrice {
			prices = append(prices, l.Price)
		}
		ids = append(ids, l.ID)
		if l.PropertyType != "" {
			types[l.PropertyType]++
		}
		names[l.Neighbourhood]++
	}
	if len(prices) == 0 {
		return domain.ZoneAnalysis{}, fmt.Errorf("%w: %s", ErrNoPrices, query)
	}

	mean, _ := prices.Mean()
	median, _ := prices.Median()
	sorted := append(stats.Float64Data(nil), prices...)
	sort.Float64s(sorted)
	pct := make(map[string]float64, 4)
	for _, p := range []int{25, 50, 75, 90} {
		pct[fmt.Sprintf("p%d", p)] = quantile(sorted, float64(p)/100)
	}

	return domain.ZoneAnalysis{
		ZoneName:            mostFrequent(names),
		AvgPricePerNight:    mean,
		MedianPricePerNight: median,
		EstimatedOccupancy:  a.occupancy(ids),
		TotalListings:       len(zone),
		ListingsPerType:     types,
		PricePercentiles:    pct,
	}, nil
}

// quantile interpolates linearly between the two closest ranks of sorted, so
// quantile(sorted, 0.5) equals the median.
func quantile(sorted stats.Float64Data, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func (a *Analyzer) occupancy(ids []string) float64 {
	if a.Calendar == nil {
		return FallbackOccupancy
	}
	var booked, total int
	for _, id := range ids {
		dc := a.Calendar[id]
		booked += dc.Booked
		total += dc.Total
	}
	if total == 0 {
		return FallbackOccupancy
	}
	return float64(booked) / float64(total)
}

// mostFrequent returns the key with the highest count, ties broken alphabetically.
func mostFrequent(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestN := "", -1
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
