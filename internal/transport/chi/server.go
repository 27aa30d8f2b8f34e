// Package chi exposes the catalog, recommendation and insights services over
// a chi-routed HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartstyle-cloud/styledex/internal/domain"
	domcat "github.com/smartstyle-cloud/styledex/internal/domain/catalog"
	cataloguc "github.com/smartstyle-cloud/styledex/internal/usecase/catalog"
	healthuc "github.com/smartstyle-cloud/styledex/internal/usecase/health"
	"github.com/smartstyle-cloud/styledex/internal/usecase/insights"
	"github.com/smartstyle-cloud/styledex/internal/usecase/recommend"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds list sizes accepted from query parameters.
type Limits struct {
	DefaultTopN int
	MaxTopN     int
}

// Server wires the use case services into HTTP handlers.
type Server struct {
	catalog       *cataloguc.Service
	recommend     *recommend.Service
	insights      *insights.Service
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	rec *recommend.Service,
	ins *insights.Service,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.DefaultTopN <= 0 {
		limits.DefaultTopN = 5
	}
	if limits.MaxTopN <= 0 {
		limits.MaxTopN = 50
	}
	s := &Server{
		catalog:   catalog,
		recommend: rec,
		insights:  ins,
		health:    health,
		limits:    limits,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeCatalogNotReady),
		sentinelHandler(domain.ErrEmptyCatalog, http.StatusUnprocessableEntity, CodeEmptyCatalog),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/items", s.listItems)
	r.Get("/items/{id}", s.getItem)
	r.Get("/items/{id}/similar", s.similarItems)
	r.Get("/items/{id}/alternatives", s.cheaperAlternatives)
	r.Get("/items/{id}/risk", s.itemRisk)
	r.Get("/insights/top-brands", s.topBrands)
	r.Get("/insights/summary", s.summary)
	r.Post("/catalog/reload", s.reloadCatalog)
	r.Get("/health", s.healthCheck)
}

// listItems handles GET /items with brand, min_price, max_price and
// min_rating query parameters.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minRating, err := parseFloatParam(q.Get("min_rating"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid min_rating: "+err.Error())
		return
	}

	var priceRange *insights.PriceRange
	if q.Get("min_price") != "" || q.Get("max_price") != "" {
		minPrice, err := parseFloatParam(q.Get("min_price"), 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid min_price: "+err.Error())
			return
		}
		maxPrice, err := parseFloatParam(q.Get("max_price"), math.Inf(1))
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid max_price: "+err.Error())
			return
		}
		priceRange = &insights.PriceRange{Min: minPrice, Max: maxPrice}
	}

	items, err := s.insights.Filter(q.Get("brand"), priceRange, minRating)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.writeItemList(w, items)
}

// getItem handles GET /items/{id}.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	item, err := store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(store, item))
}

// similarItems handles GET /items/{id}/similar.
func (s *Server) similarItems(w http.ResponseWriter, r *http.Request) {
	s.rankedList(w, r, s.recommend.Similar)
}

// cheaperAlternatives handles GET /items/{id}/alternatives.
func (s *Server) cheaperAlternatives(w http.ResponseWriter, r *http.Request) {
	s.rankedList(w, r, s.recommend.CheaperAlternatives)
}

// rankedList serves the shared shape of the similar/alternatives endpoints.
func (s *Server) rankedList(
	w http.ResponseWriter, r *http.Request,
	query func(id string, topN int, minRating float64) ([]domcat.Item, error),
) {
	q := r.URL.Query()

	topN, err := s.parseTopN(q.Get("top_n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid top_n: "+err.Error())
		return
	}
	minRating, err := parseFloatParam(q.Get("min_rating"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid min_rating: "+err.Error())
		return
	}

	items, err := query(chi.URLParam(r, "id"), topN, minRating)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.writeItemList(w, items)
}

// itemRisk handles GET /items/{id}/risk.
func (s *Server) itemRisk(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	item, err := store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := RiskResponse{
		ID:              item.ID(),
		SafeBet:         s.recommend.IsSafeBet(item),
		HighRisk:        s.recommend.IsHighRisk(item),
		ConfidenceScore: store.ConfidenceScore(item),
	}

	if resp.HighRisk {
		alts, err := s.recommend.SaferAlternatives(item)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		resp.SaferAlternatives = make([]ItemResponse, len(alts))
		for i, alt := range alts {
			resp.SaferAlternatives[i] = itemToResponse(store, alt)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// topBrands handles GET /insights/top-brands.
func (s *Server) topBrands(w http.ResponseWriter, r *http.Request) {
	topN, err := s.parseTopN(r.URL.Query().Get("top_n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid top_n: "+err.Error())
		return
	}

	groups, err := s.insights.TopGroupsByMean(insights.GroupByBrand, insights.ValueRating, topN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := TopGroupsResponse{Groups: make([]GroupMeanResponse, len(groups))}
	for i, g := range groups {
		resp.Groups[i] = GroupMeanResponse{Group: g.Group, Mean: g.Mean, Count: g.Count}
	}
	writeJSON(w, http.StatusOK, resp)
}

// summary handles GET /insights/summary.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	stats, err := s.insights.SummaryStats()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		Count:      stats.Count,
		MeanPrice:  stats.MeanPrice,
		MeanRating: stats.MeanRating,
	})
}

// reloadCatalog handles POST /catalog/reload. The previous session keeps
// serving until the new index is fully built.
func (s *Server) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Reload(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	store, _, err := s.catalog.Snapshot()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Items: store.Size()})
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) writeItemList(w http.ResponseWriter, items []domcat.Item) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := ItemListResponse{Items: make([]ItemResponse, len(items)), Total: len(items)}
	for i, item := range items {
		resp.Items[i] = itemToResponse(store, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseTopN parses top_n with the configured default and cap. Negative
// values are rejected at the transport; zero is passed through (the engine
// answers it with an empty list).
func (s *Server) parseTopN(raw string) (int, error) {
	if raw == "" {
		return s.limits.DefaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	if n > s.limits.MaxTopN {
		n = s.limits.MaxTopN
	}
	return n, nil
}

func parseFloatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

func itemToResponse(store *domcat.Store, item domcat.Item) ItemResponse {
	return ItemResponse{
		ID:              item.ID(),
		Name:            item.Name(),
		Brand:           item.Brand(),
		Description:     item.Description(),
		Attributes:      item.Attributes(),
		Price:           item.Price(),
		Rating:          item.Rating(),
		ImageURL:        item.ImageURL(),
		Color:           item.Color(),
		ConfidenceScore: store.ConfidenceScore(item),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrEmptyCatalog,
		domain.ErrIndexNotReady,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
