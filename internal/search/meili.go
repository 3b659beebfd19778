package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxDrafts   = "sop_drafts"
	idxSections = "sop_sections"
)

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. The caller
// should proceed without it if the instance never becomes healthy.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		primaryKey string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxDrafts,
			primaryKey: "id",
			filterable: []string{"ownerId", "status"},
			searchable: []string{"title"},
		},
		{
			uid:        idxSections,
			primaryKey: "id",
			filterable: []string{"ownerId", "draftId", "sectionId"},
			searchable: []string{"title", "body"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: idx.primaryKey,
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries both indexes (or a filtered subset) and merges results.
// Every sub-query carries an ownerId filter.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}
	if q.OwnerID == "" {
		return nil, 0, fmt.Errorf("search query missing owner id")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxDrafts, ResultDraft},
		{idxSections, ResultSection},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		sr := &meili.SearchRequest{
			IndexUID:              ti.uid,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			ShowRankingScore:      true,
			Filter:                []string{fmt.Sprintf("ownerId = %q", q.OwnerID)},
		}
		queries = append(queries, sr)
	}

	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}

	return results, total, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxDrafts:
		return ResultDraft
	case idxSections:
		return ResultSection
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")
	r.Status = decodeString(hit, "status")

	switch rtyp {
	case ResultDraft:
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.DraftID = r.ID
	case ResultSection:
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "body"), decodeString(hit, "body"))
		r.DraftID = decodeString(hit, "draftId")
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexDraft adds or updates a draft in the search index.
func (m *Meili) IndexDraft(d DraftRecord) error {
	_, err := m.client.Index(idxDrafts).AddDocuments([]DraftRecord{d}, nil)
	return err
}

// IndexSection adds or updates a section in the search index.
func (m *Meili) IndexSection(s SectionRecord) error {
	_, err := m.client.Index(idxSections).AddDocuments([]SectionRecord{s}, nil)
	return err
}

// DeleteDraft removes a draft and leaves its sections to the next reindex.
func (m *Meili) DeleteDraft(id string) error {
	_, err := m.client.Index(idxDrafts).DeleteDocument(id, nil)
	return err
}

// IndexDrafts bulk-indexes drafts.
func (m *Meili) IndexDrafts(drafts []DraftRecord) error {
	if len(drafts) == 0 {
		return nil
	}
	_, err := m.client.Index(idxDrafts).AddDocuments(drafts, nil)
	return err
}

// IndexSections bulk-indexes sections.
func (m *Meili) IndexSections(sections []SectionRecord) error {
	if len(sections) == 0 {
		return nil
	}
	_, err := m.client.Index(idxSections).AddDocuments(sections, nil)
	return err
}
