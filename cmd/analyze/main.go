// Command analyze prints a business plan report for one property.
//
//	analyze -costs configs/costs.yaml -price 85 -occupancy 0.70
//	analyze -costs configs/costs.yaml -zone milan-navigli-2br -xlsx plan.xlsx
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/config"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
	"github.com/glodyfimpa/str-analyzer/internal/report"
	"github.com/glodyfimpa/str-analyzer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	costsPath := flag.String("costs", "configs/costs.yaml", "YAML file with property costs")
	zoneID := flag.String("zone", "", "stored zone id to take market conditions from")
	price := flag.Float64("price", 0, "average price per night")
	occupancy := flag.Float64("occupancy", 0, "occupancy rate in [0,1]")
	taxRate := flag.Float64("tax", cfg.DefaultTaxRate, "tax rate on profit")
	multipliers := flag.String("multipliers", "", "comma separated occupancy multipliers (default 0.70,0.85,1.00,1.15)")
	title := flag.String("title", "", "report title")
	xlsxPath := flag.String("xlsx", "", "also write the business plan workbook to this path")
	flag.Parse()

	costs, err := loadCosts(*costsPath)
	if err != nil {
		log.Fatalf("load costs: %v", err)
	}

	if err := requireMarket(*zoneID, *price); err != nil {
		log.Fatal(err)
	}

	market := domain.MarketConditions{AvgPricePerNight: *price, OccupancyRate: *occupancy}
	if *zoneID != "" {
		z, err := lookupZone(cfg.DatabasePath, *zoneID)
		if err != nil {
			log.Fatalf("zone %s: %v", *zoneID, err)
		}
		market = z.MarketConditions()
		if *title == "" {
			*title = fmt.Sprintf("%s, %s", z.ZoneName, z.City)
		}
	}

	mults, err := parseMultipliers(*multipliers)
	if err != nil {
		log.Fatalf("parse multipliers: %v", err)
	}

	if err := businessplan.ValidateInputs(costs, market, *taxRate, mults); err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	policy, err := businessplan.LoadPolicyFromFile(cfg.PolicyPath)
	if err != nil {
		log.Printf("use default policy (reason: %v)", err)
	}

	calc := businessplan.NewCalculator(costs, market).WithTaxRate(*taxRate)
	decision := calc.RecommendWith(policy)
	in := report.Input{
		Title:      *title,
		Costs:      costs,
		Market:     market,
		TaxRate:    *taxRate,
		Policy:     policy,
		Projection: calc.Project(),
		Scenarios:  calc.Scenarios(mults),
		Decision:   &decision,
	}
	if err := report.Render(os.Stdout, in); err != nil {
		log.Fatalf("render report: %v", err)
	}

	if *xlsxPath != "" {
		if err := writeWorkbook(*xlsxPath, in); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		log.Printf("workbook written to %s", *xlsxPath)
	}
}

func writeWorkbook(path string, in report.Input) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteWorkbook(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// requireMarket rejects a run with neither a stored zone nor a nightly price.
func requireMarket(zoneID string, price float64) error {
	if zoneID == "" && price <= 0 {
		return errors.New("either -zone or a positive -price is required")
	}
	return nil
}

func loadCosts(path string) (domain.PropertyCosts, error) {
	var c domain.PropertyCosts
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func lookupZone(dbPath, id string) (domain.Zone, error) {
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return domain.Zone{}, err
	}
	defer store.Close()

	z, ok, err := store.GetZone(id)
	if err != nil {
		return domain.Zone{}, err
	}
	if !ok {
		return domain.Zone{}, fmt.Errorf("not found in %s", dbPath)
	}
	return z, nil
}

func parseMultipliers(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return businessplan.DefaultScenarioMultipliers, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		m, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		if m <= 0 {
			return nil, fmt.Errorf("multiplier %v must be positive", m)
		}
		out = append(out, m)
	}
	return out, nil
}
