/*
handlers.go - HTTP API handlers for the loan projection engine

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the projection, amortization and tax
  packages.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                 Full projection from a student profile
    POST   /api/repayment/standard        Standard amortization only
    POST   /api/repayment/income-driven   Income-driven repayment only
    POST   /api/tax/estimate              Take-home pay estimate

  Catalog:
    GET    /api/colleges                  Search colleges (state, private, q, limit)
    GET    /api/colleges/{name}           College details
    GET    /api/majors                    Majors with salary data
    GET    /api/states                    States with tax rates
    GET    /api/assumptions               Active projection assumptions

  Admin:
    POST   /api/admin/colleges            Upsert a college
    POST   /api/admin/salaries            Upsert a salary record
    POST   /api/admin/state-taxes         Upsert a state tax rate
    GET    /api/admin/datasets            List embedded datasets
    POST   /api/admin/datasets/load       Replace the dataset

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: SQLite dataset (writes, counts, reset)
  - Catalog: read-through cache over the store, used for every read
  - Projector: builds projections from the cached catalog
  - Assumptions: JSON factory for the active assumptions

REQUEST FLOW:
  1. Decode JSON (unknown fields rejected)
  2. Validate input
  3. Call domain logic
  4. Round to cents and serialize
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown college or record
  - 422: Numeric overflow (inputs valid but not computable)
  - 429: Rate limited
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Admin routes must not be exposed
  publicly.

SEE ALSO:
  - dto.go: Request/response data structures
  - datasets.go: Dataset loading
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/loan-projection/amortization"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/factory"
	"github.com/warp/loan-projection/projection"
	"github.com/warp/loan-projection/store/sqlite"
	"github.com/warp/loan-projection/tax"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200

	// maxBodyBytes bounds request bodies; full datasets are the largest.
	maxBodyBytes = 4 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Catalog     *catalog.CachedCatalog
	Projector   *projection.Projector
	Assumptions *factory.AssumptionsFactory
	Logger      *zap.Logger

	// Track the last loaded dataset
	mu             sync.RWMutex
	currentDataset string
}

// NewHandler creates a handler over store. Reads go through cache.
func NewHandler(store *sqlite.Store, cache catalog.Cache, cacheTTL time.Duration, assumptions projection.Assumptions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cached := catalog.NewCachedCatalog(store, cache, cacheTTL, logger)
	return &Handler{
		Store:       store,
		Catalog:     cached,
		Projector:   projection.NewProjector(cached, assumptions, logger),
		Assumptions: factory.NewAssumptionsFactory(),
		Logger:      logger,
	}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate builds a full projection.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Projector.Project(r.Context(), req.toProfile())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCalculationResultDTO(res, h.Projector.Assumptions.TermYears))
}

// StandardRepayment runs the standard amortization formula.
// POST /api/repayment/standard
func (h *Handler) StandardRepayment(w http.ResponseWriter, r *http.Request) {
	var req StandardRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := amortization.ComputeStandardRepayment(req.Principal, req.AnnualRate, req.TermYears)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var payoff *amortization.PayoffProjection
	if req.StartingAge != nil {
		p, err := amortization.StandardPayoff(*req.StartingAge, res)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		payoff = &p
	}

	writeJSON(w, http.StatusOK, toStandardDTO(res, payoff))
}

// IncomeDrivenRepayment runs the IDR simulation.
// POST /api/repayment/income-driven
func (h *Handler) IncomeDrivenRepayment(w http.ResponseWriter, r *http.Request) {
	var req IncomeDrivenRequest
	if !h.decode(w, r, &req) {
		return
	}

	a := h.Projector.Assumptions
	threshold := a.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	horizon := a.HorizonYears
	if req.HorizonYears != nil {
		horizon = *req.HorizonYears
	}

	res, err := amortization.ComputeIncomeDrivenRepayment(req.Principal, req.AnnualRate, req.AnnualIncome, threshold, horizon)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var payoff *amortization.PayoffProjection
	if req.StartingAge != nil {
		p, err := amortization.IncomeDrivenPayoff(*req.StartingAge, res)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		payoff = &p
	}

	writeJSON(w, http.StatusOK, toIncomeDrivenDTO(res, payoff))
}

// EstimateTax estimates take-home pay.
// POST /api/tax/estimate
func (h *Handler) EstimateTax(w http.ResponseWriter, r *http.Request) {
	var req TaxEstimateRequest
	if !h.decode(w, r, &req) {
		return
	}

	stateRate := decimal.Zero
	if req.StateRate != nil {
		stateRate = *req.StateRate
	} else if req.State != "" {
		if !catalog.IsKnownState(req.State) {
			writeError(w, http.StatusBadRequest, "Unknown state code", nil)
			return
		}
		t, err := h.Catalog.GetStateTax(r.Context(), req.State)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		if t == nil {
			writeError(w, http.StatusNotFound, "No tax rate recorded for state", nil)
			return
		}
		stateRate = t.Rate
	}

	rates := h.Projector.Assumptions.Rates(stateRate)
	if req.FederalRate != nil {
		rates.Federal = *req.FederalRate
	}
	if req.FICARate != nil {
		rates.FICA = *req.FICARate
	}

	b, err := tax.Estimate(req.Salary, rates)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaxEstimateDTO(b))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListColleges searches colleges.
// GET /api/colleges?state=TX&private=false&q=texas&limit=20
func (h *Handler) ListColleges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		State: q.Get("state"),
		Query: q.Get("q"),
		Limit: defaultSearchLimit,
	}

	if v := q.Get("private"); v != "" {
		private, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid private parameter (use true or false)", err)
			return
		}
		f.Private = &private
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		f.Limit = min(limit, maxSearchLimit)
	}

	colleges, err := h.Catalog.SearchColleges(r.Context(), f)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if colleges == nil {
		colleges = []catalog.College{}
	}

	writeJSON(w, http.StatusOK, colleges)
}

// GetCollege returns a single college.
// GET /api/colleges/{name}
func (h *Handler) GetCollege(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid college name", err)
		return
	}

	c, err := h.Catalog.GetCollege(r.Context(), name)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "College not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ListMajors returns every major with salary data.
// GET /api/majors
func (h *Handler) ListMajors(w http.ResponseWriter, r *http.Request) {
	majors, err := h.Catalog.ListMajors(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if majors == nil {
		majors = []string{}
	}

	writeJSON(w, http.StatusOK, majors)
}

// ListStates returns every state with its tax rate, if recorded.
// GET /api/states
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	taxes, err := h.Catalog.ListStateTaxes(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	rates := make(map[string]float64, len(taxes))
	for _, t := range taxes {
		rates[t.State] = t.Rate.InexactFloat64()
	}

	states := make([]StateDTO, 0, len(catalog.States))
	for code, name := range catalog.States {
		dto := StateDTO{Code: code, Name: name}
		if rate, ok := rates[code]; ok {
			dto.TaxRate = &rate
		}
		states = append(states, dto)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Code < states[j].Code })

	writeJSON(w, http.StatusOK, states)
}

// GetAssumptions returns the active projection assumptions.
// GET /api/assumptions
func (h *Handler) GetAssumptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Assumptions.ToJSON(h.Projector.Assumptions))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// UpsertCollege creates or replaces a college.
// POST /api/admin/colleges
func (h *Handler) UpsertCollege(w http.ResponseWriter, r *http.Request) {
	var c catalog.College
	if !h.decode(w, r, &c) {
		return
	}
	if err := h.Store.SaveCollege(r.Context(), c); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.Catalog.Invalidate()

	writeJSON(w, http.StatusCreated, c)
}

// UpsertSalary creates or replaces a salary record.
// POST /api/admin/salaries
func (h *Handler) UpsertSalary(w http.ResponseWriter, r *http.Request) {
	var s catalog.Salary
	if !h.decode(w, r, &s) {
		return
	}
	if err := h.Store.SaveSalary(r.Context(), s); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.Catalog.Invalidate()

	writeJSON(w, http.StatusCreated, s)
}

// UpsertStateTax creates or replaces a state tax rate.
// POST /api/admin/state-taxes
func (h *Handler) UpsertStateTax(w http.ResponseWriter, r *http.Request) {
	var t catalog.StateTax
	if !h.decode(w, r, &t) {
		return
	}
	if err := h.Store.SaveStateTax(r.Context(), t); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.Catalog.Invalidate()

	writeJSON(w, http.StatusCreated, t)
}

// Health reports store connectivity and record counts.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	counts, err := h.Store.Count(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": counts,
		"dataset": h.CurrentDataset(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads a JSON body into v, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *projection.ValidationError
	var inv *amortization.InvalidInputError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.As(err, &inv):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid input",
			Code:    "invalid_input",
			Details: err.Error(),
			Fields:  map[string]string{inv.Field: inv.Reason},
		})
	case errors.Is(err, amortization.ErrNumericOverflow):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Result unavailable",
			Code:    "numeric_overflow",
			Details: err.Error(),
		})
	case errors.Is(err, catalog.ErrCollegeNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "College not found",
			Code:    "not_found",
			Details: err.Error(),
		})
	case errors.Is(err, catalog.ErrInvalidRecord),
		errors.Is(err, tax.ErrInvalidRates),
		errors.Is(err, tax.ErrInvalidSalary):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid input",
			Code:    "invalid_input",
			Details: err.Error(),
		})
	default:
		h.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// CurrentDataset returns the name of the last loaded dataset.
func (h *Handler) CurrentDataset() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentDataset
}

func (h *Handler) setCurrentDataset(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentDataset = name
}
