// Command ingest computes zone statistics from a city dataset and stores
// them as a zone snapshot.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/glodyfimpa/str-analyzer/internal/config"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
	"github.com/glodyfimpa/str-analyzer/internal/market"
	"github.com/glodyfimpa/str-analyzer/internal/storage"
)

func main() {
	city := flag.String("city", "milan", "city of the dataset")
	zone := flag.String("zone", "", "neighbourhood to analyse (substring match)")
	bedrooms := flag.Int("bedrooms", -1, "bedroom count filter, -1 for any (0 selects studios)")
	listings := flag.String("listings", "", "listings CSV path or URL (overrides the city dataset)")
	calendar := flag.String("calendar", "", "calendar CSV path or URL (overrides the city dataset)")
	timeout := flag.Duration("timeout", 5*time.Minute, "download timeout")
	flag.Parse()

	if strings.TrimSpace(*zone) == "" {
		log.Fatal("-zone is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ds := market.Dataset{Listings: *listings, Calendar: *calendar}
	if ds.Listings == "" {
		known, err := market.DatasetFor(*city)
		if err != nil {
			log.Fatalf("dataset: %v", err)
		}
		ds.Listings = known.Listings
		if ds.Calendar == "" {
			ds.Calendar = known.Calendar
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	analyzer, err := market.LoadDataset(ctx, http.DefaultClient, ds)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}

	analysis, err := analyzer.AnalyzeZone(*zone, bedroomFilter(*bedrooms))
	if err != nil {
		log.Fatalf("analyze zone: %v", err)
	}

	store, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	saved, err := store.CreateZone(domain.Zone{
		City:         strings.ToLower(*city),
		Bedrooms:     max(*bedrooms, 0),
		ZoneAnalysis: analysis,
	})
	if err != nil {
		log.Fatalf("save zone: %v", err)
	}
	log.Printf("saved zone %s: %s, %d listings, avg %.2f/night, occupancy %.0f%%",
		saved.ID, saved.ZoneName, saved.TotalListings, saved.AvgPricePerNight, saved.EstimatedOccupancy*100)
}

// bedroomFilter maps the -bedrooms flag to an AnalyzeZone filter. Negative
// values mean any bedroom count.
func bedroomFilter(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}
