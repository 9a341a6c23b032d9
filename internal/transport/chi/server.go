// Package chi wires the HTTP API: investigator search, trial metadata,
// health, and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/investigator"
	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
	"github.com/kailas-cloud/trialscout/internal/domain/search/request"
	"github.com/kailas-cloud/trialscout/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/trialscout/internal/usecase/health"
	metadatauc "github.com/kailas-cloud/trialscout/internal/usecase/metadata"
	searchuc "github.com/kailas-cloud/trialscout/internal/usecase/search"
)

// sessionHeader carries the opaque client session id used for
// last-request-wins arbitration. Absent header means a stateless search.
const sessionHeader = "X-Session-Id"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server handles the trialscout HTTP API.
type Server struct {
	search        *searchuc.Service
	sessions      *searchuc.Registry
	metadata      *metadatauc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	sessions *searchuc.Registry,
	metadata *metadatauc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		sessions: sessions,
		metadata: metadata,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrZipNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest),
		sentinelHandler(domain.ErrRegistryUnavailable, http.StatusBadGateway),
		staleSearchHandler,
	}
	return s
}

// Routes mounts the API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/v1/investigators", s.SearchInvestigators)
	r.Get("/api/v1/trials/metadata", s.GetTrialMetadata)
	r.Post("/api/v1/trials/metadata", s.PostTrialMetadata)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// physicianResponse is the wire shape of one investigator record.
type physicianResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Role           string   `json:"role,omitempty"`
	Facility       string   `json:"facility,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	Zip            string   `json:"zip,omitempty"`
	Affiliation    string   `json:"affiliation,omitempty"`
	NCTID          string   `json:"nctId,omitempty"`
	StudyStartDate string   `json:"studyStartDate,omitempty"`
	DistanceMiles  *float64 `json:"distanceMiles,omitempty"`
}

type searchResponse struct {
	Physicians []physicianResponse `json:"physicians"`
	TotalCount int                 `json:"totalCount"`
	Warning    string              `json:"warning,omitempty"`
}

type attributesResponse struct {
	NCTID         string `json:"nctId"`
	Phase         string `json:"phase"`
	FundedBy      string `json:"fundedBy,omitempty"`
	OverallStatus string `json:"overallStatus,omitempty"`
}

// SearchInvestigators handles GET /api/v1/investigators.
func (s *Server) SearchInvestigators(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.runSearch(r, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	physicians := make([]physicianResponse, len(page.Investigators()))
	for i, rec := range page.Investigators() {
		physicians[i] = physicianToWire(rec)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Physicians: physicians,
		TotalCount: page.TotalCount(),
		Warning:    page.Warning(),
	})
}

// runSearch routes through the client's session when a session id is present,
// so a stale in-flight search can be discarded in favor of the newer one.
func (s *Server) runSearch(r *http.Request, req request.Request) (result.Page, error) {
	if id := r.Header.Get(sessionHeader); id != "" && s.sessions != nil {
		return s.sessions.Session(id).Search(r.Context(), req)
	}
	return s.search.Search(r.Context(), req)
}

// GetTrialMetadata handles GET /api/v1/trials/metadata.
func (s *Server) GetTrialMetadata(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ids parameter is required")
		return
	}
	s.fetchTrialMetadata(w, r, strings.Split(raw, ","))
}

// PostTrialMetadata handles POST /api/v1/trials/metadata, the body-based form
// used when the id set would not fit in a query string.
func (s *Server) PostTrialMetadata(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids field is required")
		return
	}
	s.fetchTrialMetadata(w, r, body.IDs)
}

func (s *Server) fetchTrialMetadata(w http.ResponseWriter, r *http.Request, ids []string) {
	attrs, err := s.metadata.Fetch(r.Context(), ids)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]attributesResponse, len(attrs))
	for i, a := range attrs {
		out[i] = attributesResponse{
			NCTID:         a.NCTID(),
			Phase:         a.Phase(),
			FundedBy:      a.SponsorClass(),
			OverallStatus: a.OverallStatus(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchRequestFromQuery parses and validates the search query parameters.
func searchRequestFromQuery(r *http.Request) (request.Request, error) {
	q := r.URL.Query()

	radius := 0.0
	if raw := q.Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return request.Request{}, errors.New("radius must be numeric")
		}
		radius = v
	}

	page := 0
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return request.Request{}, errors.New("page must be an integer")
		}
		page = v
	}

	var phases []string
	if raw := q.Get("phases"); raw != "" {
		phases = strings.Split(raw, ",")
	}

	recruitingOnly := false
	if raw := q.Get("recruitingOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return request.Request{}, errors.New("recruitingOnly must be a boolean")
		}
		recruitingOnly = v
	}

	filter, err := criteria.New(phases, criteria.Sponsor(q.Get("sponsorType")), recruitingOnly)
	if err != nil {
		return request.Request{}, err
	}

	var indications []string
	if raw := q.Get("indications"); raw != "" {
		indications = strings.Split(raw, ",")
	}

	return request.New(
		q.Get("zip"), radius, page,
		q.Get("startYear"), q.Get("endYear"),
		filter, indications,
	)
}

func physicianToWire(rec investigator.Investigator) physicianResponse {
	resp := physicianResponse{
		ID:          rec.ID(),
		Name:        rec.Name(),
		Role:        rec.Role(),
		Facility:    rec.Facility(),
		City:        rec.City(),
		State:       rec.State(),
		Zip:         rec.Zip(),
		Affiliation: rec.Affiliation(),
		NCTID:       rec.NCTID(),
	}
	if d := rec.StartDate(); d != nil {
		resp.StudyStartDate = d.Format(time.DateOnly)
	}
	if miles, ok := rec.Distance().Miles(); ok {
		resp.DistanceMiles = &miles
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrZipNotFound,
		domain.ErrInvalidRequest,
		domain.ErrRegistryUnavailable,
		domain.ErrSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeDomainMessage(err))
		return true
	}
}

// staleSearchHandler answers superseded searches with 409; the client already
// has a newer request in flight and should ignore this response.
func staleSearchHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrStaleSearch) {
		return false
	}
	writeError(w, http.StatusConflict, domain.ErrStaleSearch.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
