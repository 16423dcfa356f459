package main

import (
	"log"
	"net/http"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/cache"
	"github.com/glodyfimpa/str-analyzer/internal/config"
	httpapi "github.com/glodyfimpa/str-analyzer/internal/http"
	"github.com/glodyfimpa/str-analyzer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	policy, err := businessplan.LoadPolicyFromFile(cfg.PolicyPath)
	if err != nil {
		log.Printf("use default policy (reason: %v)", err)
	}

	store, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	seedZones(store, cfg.ZonesSeedPath)

	zones := httpapi.NewSQLiteZonesRepo(store, cache.NewZoneCache(cfg.MemcachedAddr))
	srv := httpapi.NewServer(policy, cfg.DefaultTaxRate, zones)

	log.Printf("API listening on %s", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, srv.Routes()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// seedZones loads the seed file into an empty database.
func seedZones(store *storage.SQLiteStore, path string) {
	n, err := store.CountZones()
	if err != nil {
		log.Fatalf("count zones: %v", err)
	}
	if n > 0 {
		return
	}

	zones, err := storage.LoadZonesFromFile(path)
	if err != nil {
		log.Printf("skip zone seed (reason: %v)", err)
		return
	}
	if err := store.UpsertMany(zones); err != nil {
		log.Fatalf("seed zones: %v", err)
	}
	log.Printf("seeded %d zones from %s", len(zones), path)
}
