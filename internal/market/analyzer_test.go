package market

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

const listingsCSV = `id,neighbourhood_cleansed,property_type,bedrooms,price
1,Navigli,Entire rental unit,2,$100.00
2,Navigli,Private room,1,$50.00
3,Navigli,Entire rental unit,2.0,$80.00
4,Navigli Sud,Entire loft,2,$150.00
5,Navigli,Entire rental unit,,
6,Brera,Entire rental unit,2,$300.00
`

const calendarCSV = `listing_id,date,available,price
1,2024-09-06,f,$100.00
1,2024-09-07,f,$100.00
1,2024-09-08,t,$100.00
2,2024-09-06,t,$50.00
4,2024-09-06,f,$150.00
6,2024-09-06,f,$300.00
`

func mustAnalyzer(t *testing.T, withCalendar bool) *Analyzer {
	t.Helper()
	listings, err := ReadListings(strings.NewReader(listingsCSV))
	if err != nil {
		t.Fatalf("ReadListings: %v", err)
	}
	if !withCalendar {
		return NewAnalyzer(listings, nil)
	}
	cal, err := ReadCalendar(strings.NewReader(calendarCSV))
	if err != nil {
		t.Fatalf("ReadCalendar: %v", err)
	}
	return NewAnalyzer(listings, cal)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReadListings(t *testing.T) {
	listings, err := ReadListings(strings.NewReader(listingsCSV))
	if err != nil {
		t.Fatalf("ReadListings: %v", err)
	}
	if len(listings) != 6 {
		t.Fatalf("listings=%d want=6", len(listings))
	}
	if listings[2].Bedrooms != 2 {
		t.Fatalf("bedrooms=%d want=2", listings[2].Bedrooms)
	}
	if listings[4].Bedrooms != UnknownBedrooms || listings[4].HasPrice {
		t.Fatalf("listing 5 = %+v, want unknown bedrooms and no price", listings[4])
	}
}

func TestReadListingsMissingColumn(t *testing.T) {
	_, err := ReadListings(strings.NewReader("id,price\n1,$10\n"))
	if err == nil {
		t.Fatal("expected error for missing neighbourhood column")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$85.00", 85, true},
		{"$1,234.50", 1234.5, true},
		{" 70 ", 70, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePrice(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParsePrice(%q)=%v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAnalyzeZone(t *testing.T) {
	a := mustAnalyzer(t, true)

	z, err := a.AnalyzeZone("navigli", nil)
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if z.ZoneName != "Navigli" {
		t.Fatalf("zone_name=%q want=Navigli", z.ZoneName)
	}
	if z.TotalListings != 5 {
		t.Fatalf("total_listings=%d want=5", z.TotalListings)
	}
	if !near(z.AvgPricePerNight, 95) || !near(z.MedianPricePerNight, 90) {
		t.Fatalf("avg=%v median=%v want 95/90", z.AvgPricePerNight, z.MedianPricePerNight)
	}
	wantPct := map[string]float64{"p25": 72.5, "p50": 90, "p75": 112.5, "p90": 135}
	for k, v := range wantPct {
		if !near(z.PricePercentiles[k], v) {
			t.Fatalf("%s=%v want=%v", k, z.PricePercentiles[k], v)
		}
	}
	if z.ListingsPerType["Entire rental unit"] != 3 || z.ListingsPerType["Private room"] != 1 {
		t.Fatalf("listings_per_type=%v", z.ListingsPerType)
	}
	// booked 3 of 5 calendar days across listings 1, 2 and 4
	if !near(z.EstimatedOccupancy, 0.6) {
		t.Fatalf("occupancy=%v want=0.6", z.EstimatedOccupancy)
	}

	m := z.MarketConditions()
	if m.AvgPricePerNight != z.AvgPricePerNight || m.OccupancyRate != z.EstimatedOccupancy {
		t.Fatalf("market=%+v", m)
	}
}

func TestAnalyzeZonePercentilesInterpolate(t *testing.T) {
	var listings []Listing
	for i, price := range []float64{400, 100, 300, 200} {
		listings = append(listings, Listing{
			ID:            string(rune('a' + i)),
			Neighbourhood: "Navigli",
			Bedrooms:      2,
			Price:         price,
			HasPrice:      true,
		})
	}

	z, err := NewAnalyzer(listings, nil).AnalyzeZone("Navigli", nil)
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	want := map[string]float64{"p25": 175, "p50": 250, "p75": 325, "p90": 370}
	for k, v := range want {
		if !near(z.PricePercentiles[k], v) {
			t.Fatalf("%s=%v want=%v", k, z.PricePercentiles[k], v)
		}
	}
	if z.PricePercentiles["p50"] != z.MedianPricePerNight {
		t.Fatalf("p50=%v median=%v", z.PricePercentiles["p50"], z.MedianPricePerNight)
	}
}

func TestQuantileSingleValue(t *testing.T) {
	for _, q := range []float64{0, 0.25, 0.9, 1} {
		if got := quantile([]float64{42}, q); got != 42 {
			t.Fatalf("quantile(%v)=%v want=42", q, got)
		}
	}
}

func TestAnalyzeZoneBedrooms(t *testing.T) {
	a := mustAnalyzer(t, true)
	two := 2

	z, err := a.AnalyzeZone("Navigli", &two)
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if z.TotalListings != 3 {
		t.Fatalf("total_listings=%d want=3", z.TotalListings)
	}
	if !near(z.AvgPricePerNight, 110) {
		t.Fatalf("avg=%v want=110", z.AvgPricePerNight)
	}
	if !near(z.EstimatedOccupancy, 0.75) {
		t.Fatalf("occupancy=%v want=0.75", z.EstimatedOccupancy)
	}

	five := 5
	if _, err := a.AnalyzeZone("Navigli", &five); !errors.Is(err, ErrNoBedroomMatch) {
		t.Fatalf("err=%v want ErrNoBedroomMatch", err)
	}
}

func TestAnalyzeZoneErrors(t *testing.T) {
	a := mustAnalyzer(t, true)
	if _, err := a.AnalyzeZone("Duomo", nil); !errors.Is(err, ErrNoListings) {
		t.Fatalf("err=%v want ErrNoListings", err)
	}
}

func TestAnalyzeZoneFallbackOccupancy(t *testing.T) {
	z, err := mustAnalyzer(t, false).AnalyzeZone("Brera", nil)
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if z.EstimatedOccupancy != FallbackOccupancy {
		t.Fatalf("occupancy=%v want=%v", z.EstimatedOccupancy, FallbackOccupancy)
	}

	a := mustAnalyzer(t, false)
	a.Calendar = CalendarSummary{}
	z, err = a.AnalyzeZone("Brera", nil)
	if err != nil {
		t.Fatalf("AnalyzeZone: %v", err)
	}
	if z.EstimatedOccupancy != FallbackOccupancy {
		t.Fatalf("occupancy=%v want=%v", z.EstimatedOccupancy, FallbackOccupancy)
	}
}

func TestLoadDatasetGzipAndHTTP(t *testing.T) {
	dir := t.TempDir()
	listingsPath := filepath.Join(dir, "listings.csv.gz")

	f, err := os.Create(listingsPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(listingsCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(calendarCSV))
	}))
	defer ts.Close()

	a, err := LoadDataset(context.Background(), ts.Client(), Dataset{Listings: listingsPath, Calendar: ts.URL + "/calendar.csv"})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(a.Listings) != 6 || len(a.Calendar) != 4 {
		t.Fatalf("listings=%d calendar=%d", len(a.Listings), len(a.Calendar))
	}

	// a missing calendar degrades to the fallback occupancy
	a, err = LoadDataset(context.Background(), ts.Client(), Dataset{Listings: listingsPath, Calendar: ts.URL + "/missing.csv"})
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if a.Calendar != nil {
		t.Fatalf("calendar=%v want nil", a.Calendar)
	}
}

func TestDatasetFor(t *testing.T) {
	if _, err := DatasetFor(" Milan "); err != nil {
		t.Fatalf("DatasetFor(milan): %v", err)
	}
	if _, err := DatasetFor("atlantis"); !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("err=%v want ErrUnknownCity", err)
	}
}
