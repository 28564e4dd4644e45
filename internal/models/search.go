package models

// SearchFilters carries the structured filters extracted from a user query.
// All fields are optional; nil means the bound is absent.
type SearchFilters struct {
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// QueryAnalysis is the result of query understanding: a refined search string
// plus structured filters. It lives for the duration of one request.
type QueryAnalysis struct {
	Query   string        `json:"query"`
	Filters SearchFilters `json:"filters"`
}

// SearchResult pairs the generated reply with the selected products, in
// selection order.
type SearchResult struct {
	Response string    `json:"response"`
	Products []Product `json:"products"`
}
