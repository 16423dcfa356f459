package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
	"github.com/glodyfimpa/str-analyzer/internal/report"
)

func TestParseMultipliers(t *testing.T) {
	got, err := parseMultipliers("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(businessplan.DefaultScenarioMultipliers) {
		t.Fatalf("expected defaults, got %v", got)
	}

	got, err = parseMultipliers(" 0.5, 1 ,1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.5, 1, 1.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	for _, bad := range []string{"abc", "0.5,-1", "0"} {
		if _, err := parseMultipliers(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadCosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.yaml")
	data := "monthly_rent: 1100\ncleaning_per_stay: 50\nproperty_management_percent: 0.1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := loadCosts(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MonthlyRent != 1100 || c.CleaningPerStay != 50 || c.PropertyManagementPercent != 0.1 {
		t.Fatalf("unexpected costs: %+v", c)
	}

	if _, err := loadCosts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRequireMarket(t *testing.T) {
	if err := requireMarket("", 0); err == nil {
		t.Fatal("expected error without zone or price")
	}
	if err := requireMarket("", 85); err != nil {
		t.Fatalf("price only: %v", err)
	}
	if err := requireMarket("milan-navigli-2br", 0); err != nil {
		t.Fatalf("zone only: %v", err)
	}
}

func TestWriteWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	in := report.Input{
		Costs:  domain.PropertyCosts{MonthlyRent: 1200, CleaningPerStay: 60},
		Market: domain.MarketConditions{AvgPricePerNight: 85, OccupancyRate: 0.7},
	}
	if err := writeWorkbook(path, in); err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	rent, err := f.GetCellValue(report.SheetInputs, "B8", excelize.Options{RawCellValue: true})
	if err != nil || rent != "1200" {
		t.Fatalf("rent=%q err=%v", rent, err)
	}
}
