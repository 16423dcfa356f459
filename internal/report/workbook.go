package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// Sheet names of the business plan workbook.
const (
	SheetInputs       = "Inputs"
	SheetCalculations = "Calculations"
	SheetScenarios    = "Scenarios"
	SheetSummary      = "Summary"
)

const (
	currencyFormat = "€#,##0.00"
	percentFormat  = "0.0%"
)

// Input cells. Calculations and Summary refer to them by address.
const (
	cellPrice        = "B4"
	cellOccupancy    = "B5"
	cellRent         = "B8"
	cellCleaning     = "B12"
	cellMgmtPercent  = "B15"
	cellCommission   = "B18"
	cellTaxRate      = "B19"
	cellStayLength   = "B20"
	cellNightsMonth  = "B21"
	inputsFixedRange = "Inputs!B8:B11,Inputs!B13:B14"
)

type cellKind int

const (
	plain cellKind = iota
	money
	percent
	section
)

type row struct {
	cell  string
	label string
	value any
	kind  cellKind
}

// WriteWorkbook writes the analysis as an xlsx workbook. Inputs are plain cells;
// Calculations and Summary hold live formulas over them, so the sheet can be
// edited without rerunning the engine. Scenarios and the engine's verdicts are
// written as values.
func WriteWorkbook(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInputs); err != nil {
		return err
	}
	for _, name := range []string{SheetCalculations, SheetScenarios, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	steps := []func(*excelize.File, styles, Input) error{
		writeInputs,
		writeCalculations,
		writeScenarios,
		writeSummary,
	}
	for _, step := range steps {
		if err := step(f, st, in); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return f.Write(w)
}

type styles struct {
	title, section, header, bold, money, percent, boldMoney, boldPercent int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	cur, pct := currencyFormat, percentFormat
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&st.section, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 11},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		}},
		{&st.header, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		}},
		{&st.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.money, &excelize.Style{CustomNumFmt: &cur}},
		{&st.percent, &excelize.Style{CustomNumFmt: &pct}},
		{&st.boldMoney, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}, CustomNumFmt: &cur}},
		{&st.boldPercent, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}, CustomNumFmt: &pct}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("new style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

// writeRows sets label/value pairs. String values starting with "=" become formulas.
func writeRows(f *excelize.File, st styles, sheet string, rows []row) error {
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 18); err != nil {
		return err
	}
	for _, r := range rows {
		labelCell := "A" + r.cell[1:]
		if err := f.SetCellValue(sheet, labelCell, r.label); err != nil {
			return err
		}
		if r.kind == section {
			if err := f.SetCellStyle(sheet, labelCell, labelCell, st.section); err != nil {
				return err
			}
			continue
		}

		if s, ok := r.value.(string); ok && strings.HasPrefix(s, "=") {
			if err := f.SetCellFormula(sheet, r.cell, s[1:]); err != nil {
				return err
			}
		} else if err := f.SetCellValue(sheet, r.cell, r.value); err != nil {
			return err
		}

		style := 0
		switch r.kind {
		case money:
			style = st.money
		case percent:
			style = st.percent
		}
		if style != 0 {
			if err := f.SetCellStyle(sheet, r.cell, r.cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeInputs(f *excelize.File, st styles, in Input) error {
	title := in.Title
	if title == "" {
		title = "SHORT-TERM RENTAL BUSINESS PLAN"
	}
	if err := f.SetCellValue(SheetInputs, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetInputs, "A1", "A1", st.title); err != nil {
		return err
	}

	c, m := in.Costs, in.Market
	return writeRows(f, st, SheetInputs, []row{
		{"B3", "Market Data", nil, section},
		{cellPrice, "Avg price per night", m.AvgPricePerNight, money},
		{cellOccupancy, "Occupancy rate", m.OccupancyRate, percent},
		{"B7", "Monthly Costs", nil, section},
		{cellRent, "Monthly rent", c.MonthlyRent, money},
		{"B9", "Condo fees", c.CondoFees, money},
		{"B10", "Utilities (gas, electricity, water)", c.Utilities, money},
		{"B11", "WiFi/Internet", c.Wifi, money},
		{cellCleaning, "Cleaning per stay", c.CleaningPerStay, money},
		{"B13", "Supplies (toiletries, linens)", c.Supplies, money},
		{"B14", "Insurance", c.Insurance, money},
		{cellMgmtPercent, "Property management (%)", c.PropertyManagementPercent, percent},
		{"B17", "Constants", nil, section},
		{cellCommission, "Platform commission", businessplan.PlatformCommission, percent},
		{cellTaxRate, "Tax rate", in.TaxRate, percent},
		{cellStayLength, "Avg stay length (nights)", businessplan.AvgStayLength, plain},
		{cellNightsMonth, "Nights per month", businessplan.NightsPerMonth, plain},
	})
}

func inputRef(cell string) string { return SheetInputs + "!" + cell }

// contributionFormula is the per-night revenue left after commission and cleaning.
func contributionFormula() string {
	return fmt.Sprintf("(%s*(1-%s)-%s/%s)", inputRef(cellPrice), inputRef(cellCommission), inputRef(cellCleaning), inputRef(cellStayLength))
}

func writeCalculations(f *excelize.File, st styles, _ Input) error {
	if err := f.SetCellValue(SheetCalculations, "A1", "Calculations"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetCalculations, "A1", "A1", st.title); err != nil {
		return err
	}

	contrib := contributionFormula()
	return writeRows(f, st, SheetCalculations, []row{
		{"B3", "Occupied nights", fmt.Sprintf("=%s*%s", inputRef(cellNightsMonth), inputRef(cellOccupancy)), plain},
		{"B4", "Number of stays", "=B3/" + inputRef(cellStayLength), plain},
		{"B6", "Gross revenue", "=B3*" + inputRef(cellPrice), money},
		{"B7", "Net revenue (after platform fee)", fmt.Sprintf("=B6*(1-%s)", inputRef(cellCommission)), money},
		{"B9", "Fixed costs", "=SUM(" + inputsFixedRange + ")", money},
		{"B10", "Variable costs (cleaning)", "=B4*" + inputRef(cellCleaning), money},
		{"B11", "Property management fee", "=B7*" + inputRef(cellMgmtPercent), money},
		{"B12", "Total costs", "=B9+B10+B11", money},
		{"B14", "Profit before tax", "=B7-B12", money},
		{"B15", "Net profit (after tax)", fmt.Sprintf("=B14*(1-%s)", inputRef(cellTaxRate)), money},
		{"B17", "Profit margin", "=IF(B7>0,B15/B7,0)", percent},
		{"B18", "Annual profit", "=B15*12", money},
		{"B19", "Annual ROI", fmt.Sprintf("=IF(%[1]s*12>0,B18/(%[1]s*12),0)", inputRef(cellRent)), percent},
		{"B20", "Revenue/Rent", fmt.Sprintf("=IF(%[1]s>0,B6/%[1]s,0)", inputRef(cellRent)), plain},
		{"B21", "Break-even nights", fmt.Sprintf("=IF(%[1]s>0,MIN(%[2]s,MAX(0,TRUNC(B9/%[1]s))),%[2]s)", contrib, inputRef(cellNightsMonth)), plain},
	})
}

func writeScenarios(f *excelize.File, st styles, in Input) error {
	headers := []any{"Scenario", "Occupancy", "Gross revenue", "Net profit", "Annual ROI", "Break-even nights"}
	if err := f.SetSheetRow(SheetScenarios, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetScenarios, "A1", "F1", st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetScenarios, "A", "F", 16); err != nil {
		return err
	}

	for i, s := range in.Scenarios {
		r := i + 2
		values := []any{
			s.Label,
			s.Occupancy,
			s.Projection.GrossRevenue,
			s.Projection.NetProfit,
			s.Projection.AnnualROI,
			s.Projection.BreakEvenNights,
		}
		if err := f.SetSheetRow(SheetScenarios, fmt.Sprintf("A%d", r), &values); err != nil {
			return err
		}
		for col, style := range map[string]int{"B": st.percent, "C": st.money, "D": st.money, "E": st.percent} {
			cell := fmt.Sprintf("%s%d", col, r)
			if err := f.SetCellStyle(SheetScenarios, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func calc(cell string) string { return "=" + SheetCalculations + "!" + cell }

func writeSummary(f *excelize.File, st styles, in Input) error {
	policy := in.Policy
	if policy == (businessplan.Policy{}) {
		policy = businessplan.DefaultPolicy()
	}

	if err := f.SetCellValue(SheetSummary, "A1", "BUSINESS PLAN SUMMARY"); err != nil {
		return err
	}
	if err := f.MergeCell(SheetSummary, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", st.title); err != nil {
		return err
	}
	if err := f.SetCellFormula(SheetSummary, "B3", SheetInputs+"!A1"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetSummary, "A3", "Property"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A3", "B3", st.header); err != nil {
		return err
	}

	roiCheck := fmt.Sprintf(`=IF(%s!B19>=%g,"✓ PASS","✗ FAIL")`, SheetCalculations, policy.MinROI)
	ratioCheck := fmt.Sprintf(`=IF(%s!B20>=%g,"✓ PASS","✗ FAIL")`, SheetCalculations, policy.MinRevenueToRent)
	breakEvenCheck := fmt.Sprintf(`=IF(%s!B21<=%d,"✓ PASS","✗ FAIL")`, SheetCalculations, policy.MaxBreakEvenNights)
	recommendation := fmt.Sprintf(`=IF(AND(B20="✓ PASS",B21="✓ PASS",B22="✓ PASS"),"%s","%s")`, domain.RecommendationGo, domain.RecommendationNoGo)

	err := writeRows(f, st, SheetSummary, []row{
		{"B5", "KEY METRICS", nil, section},
		{"B6", "Monthly Net Profit", calc("B15"), plain},
		{"B7", "Annual ROI", calc("B19"), plain},
		{"B8", "Profit Margin", calc("B17"), percent},
		{"B9", "Break-even (nights/month)", calc("B21") + `&"/30"`, plain},
		{"B11", "MONTHLY BREAKDOWN", nil, section},
		{"B12", "Gross Revenue", calc("B6"), money},
		{"B13", "Net Revenue (after platform)", calc("B7"), money},
		{"B14", "Total Costs", calc("B12"), money},
		{"B15", "  - Fixed costs", calc("B9"), money},
		{"B16", "  - Variable costs", calc("B10"), money},
		{"B17", "  - Property mgmt", calc("B11"), money},
		{"B19", "DECISION CRITERIA", nil, section},
		{"B20", fmt.Sprintf("ROI (min %s)", Percent(policy.MinROI)), roiCheck, plain},
		{"B21", fmt.Sprintf("Revenue/Rent (min %.1fx)", policy.MinRevenueToRent), ratioCheck, plain},
		{"B22", fmt.Sprintf("Break-even (max %d nights)", policy.MaxBreakEvenNights), breakEvenCheck, plain},
		{"B23", "Recommendation", recommendation, plain},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B6", "B6", st.boldMoney); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B7", "B7", st.boldPercent); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B20", "B23", st.bold); err != nil {
		return err
	}

	d := in.Decision
	if d == nil {
		return nil
	}
	rows := []row{
		{"B25", "ENGINE VERDICT", nil, section},
		{"B26", "Recommendation", fmt.Sprintf("%s (%s confidence)", d.Recommendation, d.Confidence), plain},
		{"B27", "Score", fmt.Sprintf("%d/3 (optimal %d/3)", d.Score, d.OptimalCount), plain},
	}
	for i, reason := range d.Reasons {
		rows = append(rows, row{fmt.Sprintf("B%d", 28+i), "", reason, plain})
	}
	return writeRows(f, st, SheetSummary, rows)
}
