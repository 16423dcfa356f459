package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "zones.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return st
}

func zone(id, city, name string, price, occ float64) domain.Zone {
	return domain.Zone{
		ID:   id,
		City: city,
		ZoneAnalysis: domain.ZoneAnalysis{
			ZoneName:           name,
			AvgPricePerNight:   price,
			EstimatedOccupancy: occ,
			TotalListings:      10,
			ListingsPerType:    map[string]int{"Entire rental unit": 7, "Private room": 3},
			PricePercentiles:   map[string]float64{"p50": price},
		},
	}
}

func TestZonesCRUD(t *testing.T) {
	st := openTestStore(t)

	created, err := st.CreateZone(zone("", "milan", "Navigli", 85, 0.7))
	if err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created zone missing id or timestamp: %+v", created)
	}

	got, ok, err := st.GetZone(created.ID)
	if err != nil || !ok {
		t.Fatalf("GetZone ok=%v err=%v", ok, err)
	}
	if got.ZoneName != "Navigli" || got.AvgPricePerNight != 85 || got.EstimatedOccupancy != 0.7 {
		t.Fatalf("got=%+v", got)
	}
	if got.ListingsPerType["Private room"] != 3 || got.PricePercentiles["p50"] != 85 {
		t.Fatalf("json columns not restored: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at=%v want=%v", got.CreatedAt, created.CreatedAt)
	}

	deleted, err := st.DeleteZone(created.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteZone deleted=%v err=%v", deleted, err)
	}
	if _, ok, _ := st.GetZone(created.ID); ok {
		t.Fatal("zone still present after delete")
	}
	if deleted, _ := st.DeleteZone(created.ID); deleted {
		t.Fatal("second delete reported success")
	}
}

func TestUpsertManyIgnoresDuplicates(t *testing.T) {
	st := openTestStore(t)
	seed := []domain.Zone{
		zone("z-1", "milan", "Navigli", 85, 0.7),
		zone("z-2", "milan", "Brera", 140, 0.6),
	}
	if err := st.UpsertMany(seed); err != nil {
		t.Fatalf("UpsertMany: %v", err)
	}
	if err := st.UpsertMany(seed); err != nil {
		t.Fatalf("UpsertMany again: %v", err)
	}
	n, err := st.CountZones()
	if err != nil {
		t.Fatalf("CountZones: %v", err)
	}
	if n != 2 {
		t.Fatalf("count=%d want=2", n)
	}
}

func TestListZonesFiltered(t *testing.T) {
	st := openTestStore(t)
	if err := st.UpsertMany([]domain.Zone{
		zone("z-1", "Milan", "Navigli", 85, 0.70),
		zone("z-2", "Milan", "Brera", 140, 0.60),
		zone("z-3", "Milan", "Isola", 110, 0.75),
		zone("z-4", "Rome", "Trastevere", 120, 0.80),
	}); err != nil {
		t.Fatalf("UpsertMany: %v", err)
	}

	items, total, err := st.ListZones(ZoneFilter{City: "MILAN", MinOccupancy: 0.65, Sort: "price_desc"})
	if err != nil {
		t.Fatalf("ListZones: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total=%d items=%d want=2/2", total, len(items))
	}
	if items[0].ZoneName != "Isola" || items[1].ZoneName != "Navigli" {
		t.Fatalf("order=%q,%q want Isola,Navigli", items[0].ZoneName, items[1].ZoneName)
	}

	items, total, err = st.ListZones(ZoneFilter{Limit: 1, Offset: 1, Sort: "occupancy_desc"})
	if err != nil {
		t.Fatalf("ListZones: %v", err)
	}
	if total != 4 || len(items) != 1 || items[0].ZoneName != "Isola" {
		t.Fatalf("total=%d items=%+v", total, items)
	}
}

func TestLoadZonesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.json")
	data := `[{"id":"z-1","city":"milan","zone_name":"Navigli","avg_price_per_night":85,"estimated_occupancy_rate":0.7}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	zones, err := LoadZonesFromFile(path)
	if err != nil {
		t.Fatalf("LoadZonesFromFile: %v", err)
	}
	if len(zones) != 1 || zones[0].ZoneName != "Navigli" || zones[0].EstimatedOccupancy != 0.7 {
		t.Fatalf("zones=%+v", zones)
	}

	if _, err := LoadZonesFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadZonesFromFileRejectsInvalidZone(t *testing.T) {
	cases := map[string]string{
		"occupancy": `[{"id":"z-1","zone_name":"Navigli","avg_price_per_night":85,"estimated_occupancy_rate":1.4}]`,
		"price":     `[{"id":"z-1","zone_name":"Navigli","avg_price_per_night":-5,"estimated_occupancy_rate":0.7}]`,
		"name":      `[{"id":"z-1","zone_name":" ","avg_price_per_night":85,"estimated_occupancy_rate":0.7}]`,
	}
	for name, data := range cases {
		path := filepath.Join(t.TempDir(), "zones.json")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadZonesFromFile(path)
		if !errors.Is(err, ErrInvalidZone) {
			t.Fatalf("%s: err=%v want ErrInvalidZone", name, err)
		}
	}
}
