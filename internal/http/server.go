package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/glodyfimpa/str-analyzer/internal/businessplan"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
	"github.com/glodyfimpa/str-analyzer/internal/report"
)

type Server struct {
	Policy  businessplan.Policy
	TaxRate float64
	Zones   ZoneRepo
}

// NewServer wires the analysis API. zones may be nil, which disables the
// /zones endpoints and zone_id lookups.
func NewServer(policy businessplan.Policy, taxRate float64, zones ZoneRepo) *Server {
	return &Server{Policy: policy, TaxRate: taxRate, Zones: zones}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/projection", s.handleProjection)
	mux.HandleFunc("/scenarios", s.handleScenarios)
	mux.HandleFunc("/decision", s.handleDecision)
	mux.HandleFunc("/analysis", s.handleAnalysis)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/zones", s.handleZonesList)
	mux.HandleFunc("/zones/", s.handleZonesGetByID)
	mux.HandleFunc("/demo", s.handleDemo)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- Analysis API ----

// AnalysisRequest is shared by every analysis endpoint. Market conditions come
// either inline or from a stored zone.
type AnalysisRequest struct {
	Title       string                   `json:"title"`
	Costs       domain.PropertyCosts     `json:"costs"`
	Market      *domain.MarketConditions `json:"market"`
	ZoneID      string                   `json:"zone_id"`
	TaxRate     *float64                 `json:"tax_rate"`
	Multipliers []float64                `json:"multipliers"`
}

type AnalysisResponse struct {
	ID         string                   `json:"id"`
	Costs      domain.PropertyCosts     `json:"costs"`
	Market     domain.MarketConditions  `json:"market"`
	TaxRate    float64                  `json:"tax_rate"`
	Projection domain.MonthlyProjection `json:"projection"`
	Scenarios  []domain.Scenario        `json:"scenarios"`
	Decision   domain.DecisionResult    `json:"decision"`
}

type ScenariosResponse struct {
	Scenarios []domain.Scenario `json:"scenarios"`
}

var errBadRequest = errors.New("bad request")

// decodeAnalysis reads, validates and resolves a request into a calculator.
// Errors wrapping errBadRequest are the caller's fault.
func (s *Server) decodeAnalysis(r *http.Request) (AnalysisRequest, *businessplan.Calculator, error) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, fmt.Errorf("%w: invalid JSON", errBadRequest)
	}

	var market domain.MarketConditions
	switch {
	case req.Market != nil:
		market = *req.Market
	case req.ZoneID != "":
		if s.Zones == nil {
			return req, nil, fmt.Errorf("%w: zone lookups are not configured", errBadRequest)
		}
		z, ok, err := s.Zones.Get(r.Context(), req.ZoneID)
		if err != nil {
			return req, nil, fmt.Errorf("load zone %s: %w", req.ZoneID, err)
		}
		if !ok {
			return req, nil, fmt.Errorf("%w: zone %s not found", errBadRequest, req.ZoneID)
		}
		market = z.MarketConditions()
		if req.Title == "" {
			req.Title = z.ZoneName + ", " + z.City
		}
	default:
		return req, nil, fmt.Errorf("%w: market or zone_id is required", errBadRequest)
	}

	taxRate := s.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if err := businessplan.ValidateInputs(req.Costs, market, taxRate, req.Multipliers); err != nil {
		return req, nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	calc := businessplan.NewCalculator(req.Costs, market).WithTaxRate(taxRate)
	if req.Multipliers == nil {
		req.Multipliers = businessplan.DefaultScenarioMultipliers
	}
	return req, calc, nil
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": strings.TrimPrefix(err.Error(), errBadRequest.Error()+": ")})
		return
	}
	log.Printf("analysis: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, calc, err := s.decodeAnalysis(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.Project())
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, calc, err := s.decodeAnalysis(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScenariosResponse{Scenarios: calc.Scenarios(req.Multipliers)})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, calc, err := s.decodeAnalysis(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calc.RecommendWith(s.Policy))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, calc, err := s.decodeAnalysis(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{
		ID:         uuid.New().String(),
		Costs:      calc.Costs,
		Market:     calc.Market,
		TaxRate:    calc.TaxRate,
		Projection: calc.Project(),
		Scenarios:  calc.Scenarios(req.Multipliers),
		Decision:   calc.RecommendWith(s.Policy),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, calc, err := s.decodeAnalysis(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	decision := calc.RecommendWith(s.Policy)
	in := report.Input{
		Title:      req.Title,
		Costs:      calc.Costs,
		Market:     calc.Market,
		TaxRate:    calc.TaxRate,
		Policy:     s.Policy,
		Projection: calc.Project(),
		Scenarios:  calc.Scenarios(req.Multipliers),
		Decision:   &decision,
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.Render(w, in); err != nil {
			log.Printf("report: %v", err)
		}
	case "xlsx":
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, in); err != nil {
			log.Printf("report workbook: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="business_plan.xlsx"`)
		_, _ = w.Write(buf.Bytes())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be text or xlsx"})
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ---- Zones API ----

type ZonesListResponse struct {
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Total  int           `json:"total"`
	Items  []domain.Zone `json:"items"`
}

type CreateZoneRequest struct {
	City                string             `json:"city"`
	ZoneName            string             `json:"zone_name"`
	Bedrooms            int                `json:"bedrooms"`
	AvgPricePerNight    float64            `json:"avg_price_per_night"`
	MedianPricePerNight float64            `json:"median_price_per_night"`
	EstimatedOccupancy  float64            `json:"estimated_occupancy_rate"`
	TotalListings       int                `json:"total_listings"`
	ListingsPerType     map[string]int     `json:"listings_per_type"`
	PricePercentiles    map[string]float64 `json:"price_percentiles"`
}

func (s *Server) handleZonesList(w http.ResponseWriter, r *http.Request) {
	if s.Zones == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "zones_unavailable"})
		return
	}
	if r.Method == http.MethodPost {
		s.handleZonesCreate(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	limit, offset := parseLimitOffset(r, 20, 0)
	p := ListParams{
		City:   q.Get("city"),
		Zone:   q.Get("zone"),
		Sort:   q.Get("sort"),
		Limit:  limit,
		Offset: offset,
	}
	p.Bedrooms, _ = strconv.Atoi(q.Get("bedrooms"))
	p.MinOccupancy, _ = strconv.ParseFloat(q.Get("min_occupancy"), 64)

	items, total, err := s.Zones.List(r.Context(), p)
	if err != nil {
		log.Printf("list zones: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	if items == nil {
		items = []domain.Zone{}
	}

	writeJSON(w, http.StatusOK, ZonesListResponse{
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  items,
	})
}

func (s *Server) handleZonesCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.ZoneName) == "" {
		http.Error(w, "city and zone_name are required", http.StatusBadRequest)
		return
	}
	if req.AvgPricePerNight <= 0 {
		http.Error(w, "avg_price_per_night must be > 0", http.StatusBadRequest)
		return
	}
	if req.EstimatedOccupancy < 0 || req.EstimatedOccupancy > 1 {
		http.Error(w, "estimated_occupancy_rate must be within [0,1]", http.StatusBadRequest)
		return
	}

	z, err := s.Zones.Create(r.Context(), domain.Zone{
		City:     req.City,
		Bedrooms: req.Bedrooms,
		ZoneAnalysis: domain.ZoneAnalysis{
			ZoneName:            req.ZoneName,
			AvgPricePerNight:    req.AvgPricePerNight,
			MedianPricePerNight: req.MedianPricePerNight,
			EstimatedOccupancy:  req.EstimatedOccupancy,
			TotalListings:       req.TotalListings,
			ListingsPerType:     req.ListingsPerType,
			PricePercentiles:    req.PricePercentiles,
		},
	})
	if err != nil {
		log.Printf("create zone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	writeJSON(w, http.StatusCreated, z)
}

func (s *Server) handleZonesGetByID(w http.ResponseWriter, r *http.Request) {
	if s.Zones == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "zones_unavailable"})
		return
	}
	id := r.URL.Path[len("/zones/"):]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_id"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		z, ok, err := s.Zones.Get(r.Context(), id)
		if err != nil {
			log.Printf("get zone %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, z)

	case http.MethodDelete:
		deleted, err := s.Zones.Delete(r.Context(), id)
		if err != nil {
			log.Printf("delete zone %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}
		if !deleted {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
