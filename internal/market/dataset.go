package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// UnknownBedrooms marks a listing whose bedroom count is missing.
const UnknownBedrooms = -1

type Listing struct {
	ID            string
	Neighbourhood string
	PropertyType  string
	Bedrooms      int
	Price         float64
	HasPrice      bool
}

// DayCounts tallies calendar days for one listing.
type DayCounts struct {
	Booked int
	Total  int
}

// CalendarSummary maps listing id to its calendar tallies.
type CalendarSummary map[string]DayCounts

// Dataset points at the listings and calendar files of one city.
type Dataset struct {
	Listings string
	Calendar string
}

const insideAirbnbBase = "http://data.insideairbnb.com"

// CityDatasets lists the cities with known dataset locations.
var CityDatasets = map[string]Dataset{
	"milan": {
		Listings: insideAirbnbBase + "/italy/lombardy/milan/2024-09-06/data/listings.csv.gz",
		Calendar: insideAirbnbBase + "/italy/lombardy/milan/2024-09-06/data/calendar.csv.gz",
	},
}

var ErrUnknownCity = errors.New("city not supported")

// DatasetFor returns the dataset of a city, case-insensitively.
func DatasetFor(city string) (Dataset, error) {
	ds, ok := CityDatasets[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	return ds, nil
}

// Open opens a local path or an http(s) URL. Sources ending in .gz are
// decompressed on the fly.
func Open(ctx context.Context, client *http.Client, src string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src, err)
		}
		rc = f
	}

	if !strings.HasSuffix(strings.ToLower(src), ".gz") {
		return rc, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip %s: %w", src, err)
	}
	return &gzipReadCloser{Reader: zr, under: rc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	if err := g.under.Close(); err != nil {
		return err
	}
	return zerr
}

// header reads the first CSV row and checks the required columns exist.
func header(cr *csv.Reader, required ...string) (map[string]int, error) {
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(row))
	for i, name := range row {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ReadListings parses an InsideAirbnb listings.csv.
func ReadListings(r io.Reader) ([]Listing, error) {
	cr := newCSVReader(r)
	col, err := header(cr, "id", "neighbourhood_cleansed", "price")
	if err != nil {
		return nil, err
	}
	typeCol, hasType := col["property_type"]
	bedCol, hasBeds := col["bedrooms"]

	var out []Listing
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read listings: %w", err)
		}

		l := Listing{
			ID:            field(row, col["id"]),
			Neighbourhood: field(row, col["neighbourhood_cleansed"]),
			Bedrooms:      UnknownBedrooms,
		}
		if hasType {
			l.PropertyType = field(row, typeCol)
		}
		if hasBeds {
			if n, err := strconv.ParseFloat(field(row, bedCol), 64); err == nil {
				l.Bedrooms = int(n)
			}
		}
		l.Price, l.HasPrice = ParsePrice(field(row, col["price"]))
		out = append(out, l)
	}
	return out, nil
}

// ParsePrice cleans values like "$1,234.00".
func ParsePrice(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "", "€", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadCalendar tallies an InsideAirbnb calendar.csv per listing. A day with
// available = "f" counts as booked.
func ReadCalendar(r io.Reader) (CalendarSummary, error) {
	cr := newCSVReader(r)
	col, err := header(cr, "listing_id", "available")
	if err != nil {
		return nil, err
	}

	out := make(CalendarSummary)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read calendar: %w", err)
		}
		id := field(row, col["listing_id"])
		dc := out[id]
		dc.Total++
		if field(row, col["available"]) == "f" {
			dc.Booked++
		}
		out[id] = dc
	}
	return out, nil
}
