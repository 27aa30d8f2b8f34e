package chi

// ErrorCode identifies an API error class.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeItemNotFound      ErrorCode = "item_not_found"
	CodeEmptyCatalog      ErrorCode = "empty_catalog"
	CodeCatalogNotReady   ErrorCode = "catalog_not_ready"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the uniform API error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ItemResponse is one catalog item as served by the API.
type ItemResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	Description     string  `json:"description,omitempty"`
	Attributes      string  `json:"attributes,omitempty"`
	Price           float64 `json:"price"`
	Rating          float64 `json:"rating"`
	ImageURL        string  `json:"image_url,omitempty"`
	Color           string  `json:"color,omitempty"`
	ConfidenceScore int     `json:"confidence_score"`
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// RiskResponse carries the risk/confidence classification of one item,
// with same-brand dominating alternatives when the item is high risk.
type RiskResponse struct {
	ID                string         `json:"id"`
	SafeBet           bool           `json:"safe_bet"`
	HighRisk          bool           `json:"high_risk"`
	ConfidenceScore   int            `json:"confidence_score"`
	SaferAlternatives []ItemResponse `json:"safer_alternatives,omitempty"`
}

// GroupMeanResponse is one row of a grouped-mean aggregation.
type GroupMeanResponse struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// TopGroupsResponse wraps a grouped aggregation result.
type TopGroupsResponse struct {
	Groups []GroupMeanResponse `json:"groups"`
}

// SummaryResponse carries whole-catalog dashboard metrics.
type SummaryResponse struct {
	Count      int     `json:"count"`
	MeanPrice  float64 `json:"mean_price"`
	MeanRating float64 `json:"mean_rating"`
}

// ReloadResponse reports the outcome of a catalog reload.
type ReloadResponse struct {
	Items int `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
