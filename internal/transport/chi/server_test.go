package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartstyle-cloud/styledex/internal/domain"
	domcat "github.com/smartstyle-cloud/styledex/internal/domain/catalog"
	cataloguc "github.com/smartstyle-cloud/styledex/internal/usecase/catalog"
	healthuc "github.com/smartstyle-cloud/styledex/internal/usecase/health"
	"github.com/smartstyle-cloud/styledex/internal/usecase/insights"
	"github.com/smartstyle-cloud/styledex/internal/usecase/recommend"
)

// --- Fixtures ---

type stubRows struct {
	rows []domcat.Row
	err  error
}

func (s *stubRows) Rows(_ context.Context) ([]domcat.Row, error) { return s.rows, s.err }

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	// Deterministic 2-dim vector derived from the text length.
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

func fixtureRows() []domcat.Row {
	return []domcat.Row{
		{ID: "p1", Name: "Slim Jeans", Brand: "DenimCo", Price: "1000", Rating: "4.0", Color: "Blue"},
		{ID: "p2", Name: "Raw Denim Jacket", Brand: "DenimCo", Price: "1500", Rating: "4.8", Color: "Blue"},
		{ID: "p3", Name: "Plain Tee", Brand: "BasicWear", Price: "500", Rating: "3.0", Color: "White"},
		{ID: "p4", Name: "Leather Coat", Brand: "LuxLeather", Price: "5000", Rating: "4.0", Color: "Black"},
	}
}

func newTestServer(t *testing.T, loaded bool) (*Server, *gochi.Mux) {
	t.Helper()

	catalogSvc := cataloguc.New(&stubRows{rows: fixtureRows()}, &stubEmbedder{}, zap.NewNop())
	if loaded {
		if err := catalogSvc.Reload(context.Background()); err != nil {
			t.Fatalf("Reload: %v", err)
		}
	}

	srv := NewServer(
		catalogSvc,
		recommend.New(catalogSvc),
		insights.New(catalogSvc),
		healthuc.New(catalogSvc, nil, nil),
		Limits{DefaultTopN: 5, MaxTopN: 50},
		zap.NewNop(),
	)

	r := gochi.NewRouter()
	srv.Routes(r)
	return srv, r
}

func doRequest(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

// --- Tests ---

func TestListItems(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemListResponse](t, rec)
	if resp.Total != 4 || len(resp.Items) != 4 {
		t.Fatalf("expected 4 items, got total=%d len=%d", resp.Total, len(resp.Items))
	}
	// Id-ordered output; top-rated item scores 100.
	if resp.Items[0].ID != "p1" {
		t.Errorf("expected p1 first, got %s", resp.Items[0].ID)
	}
	for _, it := range resp.Items {
		if it.ID == "p2" && it.ConfidenceScore != 100 {
			t.Errorf("top-rated item confidence: got %d, want 100", it.ConfidenceScore)
		}
	}
}

func TestListItems_Filtered(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items?brand=DenimCo&min_price=0&max_price=1200&min_rating=3.0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemListResponse](t, rec)
	if resp.Total != 1 || resp.Items[0].ID != "p1" {
		t.Fatalf("expected only p1, got %+v", resp.Items)
	}
}

func TestListItems_BadParam(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items?min_rating=abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Code != CodeBadRequest {
		t.Errorf("expected code %s, got %s", CodeBadRequest, resp.Code)
	}
}

func TestGetItem(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemResponse](t, rec)
	if resp.ID != "p1" || resp.Brand != "DenimCo" || resp.Price != 1000 {
		t.Errorf("unexpected item: %+v", resp)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Code != CodeItemNotFound {
		t.Errorf("expected code %s, got %s", CodeItemNotFound, resp.Code)
	}
}

func TestSimilarItems(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p1/similar?top_n=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemListResponse](t, rec)
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	for _, it := range resp.Items {
		if it.ID == "p1" {
			t.Error("query item must not appear in its own ranking")
		}
	}
}

func TestSimilarItems_NegativeTopN(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p1/similar?top_n=-1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSimilarItems_ZeroTopN(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p1/similar?top_n=0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemListResponse](t, rec)
	if len(resp.Items) != 0 {
		t.Errorf("top_n=0 must yield an empty list, got %d items", len(resp.Items))
	}
}

func TestCheaperAlternatives(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p2/alternatives")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ItemListResponse](t, rec)
	for _, it := range resp.Items {
		if it.Price >= 1500 {
			t.Errorf("alternative %s not strictly cheaper: %v", it.ID, it.Price)
		}
	}
}

func TestItemRisk_HighRiskWithAlternatives(t *testing.T) {
	_, r := newTestServer(t, true)

	// p4: 5000 / 4.0 is high risk; LuxLeather has no better items.
	rec := doRequest(t, r, http.MethodGet, "/items/p4/risk")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[RiskResponse](t, rec)
	if !resp.HighRisk || resp.SafeBet {
		t.Errorf("expected high risk only, got %+v", resp)
	}
	if len(resp.SaferAlternatives) != 0 {
		t.Errorf("single-item brand must yield no alternatives, got %d", len(resp.SaferAlternatives))
	}
}

func TestItemRisk_SafeBet(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/items/p2/risk")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[RiskResponse](t, rec)
	if !resp.SafeBet || resp.HighRisk {
		t.Errorf("expected safe bet only, got %+v", resp)
	}
	if resp.ConfidenceScore != 100 {
		t.Errorf("top-rated item confidence: got %d, want 100", resp.ConfidenceScore)
	}
}

func TestTopBrands(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/insights/top-brands?top_n=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[TopGroupsResponse](t, rec)
	if len(resp.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(resp.Groups))
	}
	// DenimCo: (4.0+4.8)/2 = 4.4, LuxLeather: 4.0, BasicWear: 3.0.
	if resp.Groups[0].Group != "DenimCo" || resp.Groups[1].Group != "LuxLeather" {
		t.Errorf("unexpected order: %s, %s", resp.Groups[0].Group, resp.Groups[1].Group)
	}
}

func TestSummary(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/insights/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[SummaryResponse](t, rec)
	if resp.Count != 4 {
		t.Errorf("count: got %d, want 4", resp.Count)
	}
	if resp.MeanPrice != 2000 {
		t.Errorf("mean price: got %v, want 2000", resp.MeanPrice)
	}
}

func TestReloadCatalog(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodPost, "/catalog/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ReloadResponse](t, rec)
	if resp.Items != 4 {
		t.Errorf("items: got %d, want 4", resp.Items)
	}
}

func TestNotReady(t *testing.T) {
	_, r := newTestServer(t, false)

	for _, target := range []string{"/items", "/items/p1", "/items/p1/similar", "/insights/summary"} {
		rec := doRequest(t, r, http.MethodGet, target)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503 before first load, got %d", target, rec.Code)
			continue
		}
		resp := decodeBody[ErrorResponse](t, rec)
		if resp.Code != CodeCatalogNotReady {
			t.Errorf("%s: expected code %s, got %s", target, CodeCatalogNotReady, resp.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	_, r := newTestServer(t, true)

	rec := doRequest(t, r, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "ok" || resp.Checks["catalog"] != "ok" {
		t.Errorf("unexpected health report: %+v", resp)
	}
}

func TestHealth_DegradedBeforeLoad(t *testing.T) {
	_, r := newTestServer(t, false)

	rec := doRequest(t, r, http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "degraded" {
		t.Errorf("expected degraded status, got %s", resp.Status)
	}
}
