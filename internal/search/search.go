package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDraft   ResultType = "draft"
	ResultSection ResultType = "section"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	DraftID string     `json:"draftId"`
	Status  string     `json:"status,omitempty"`
}

// Query describes a search request. OwnerID is mandatory; results never
// cross owner boundaries.
type Query struct {
	Text       string
	OwnerID    string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// DraftRecord is the data we index for a draft.
type DraftRecord struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Title   string `json:"title"`
	Status  string `json:"status"`
}

// SectionRecord is the data we index for one saved section.
type SectionRecord struct {
	ID        string `json:"id"` // draftID/sectionID
	OwnerID   string `json:"ownerId"`
	DraftID   string `json:"draftId"`
	SectionID string `json:"sectionId"`
	Title     string `json:"title"`
	Body      string `json:"body"` // flattened answer text
}
