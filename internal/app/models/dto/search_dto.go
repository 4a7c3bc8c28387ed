package dto

// SearchHit is one normalized entry in the aggregate search result
type SearchHit struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Avatar   string `json:"avatar,omitempty"`
}

// SearchResponse is the body of the aggregate search endpoint
type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Query   string      `json:"query"`
}
