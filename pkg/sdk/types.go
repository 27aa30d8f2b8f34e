package styledex

// Item is one catalog item as served by the API.
type Item struct {
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

// RiskReport classifies one item and lists same-brand dominating
// alternatives when the item is high risk.
type RiskReport struct {
	ID                string `json:"id"`
	SafeBet           bool   `json:"safe_bet"`
	HighRisk          bool   `json:"high_risk"`
	ConfidenceScore   int    `json:"confidence_score"`
	SaferAlternatives []Item `json:"safer_alternatives,omitempty"`
}

// GroupMean is one row of a grouped-mean aggregation.
type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Summary carries whole-catalog dashboard metrics.
type Summary struct {
	Count      int     `json:"count"`
	MeanPrice  float64 `json:"mean_price"`
	MeanRating float64 `json:"mean_rating"`
}

// Health reports per-component health as returned by the API.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type itemListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type topGroupsResponse struct {
	Groups []GroupMean `json:"groups"`
}

type reloadResponse struct {
	Items int `json:"items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
