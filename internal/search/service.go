package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexDraft indexes a draft (fire-and-forget to Meilisearch).
func (s *Service) IndexDraft(d DraftRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexDraft(d); err != nil {
			log.Printf("search: index draft %s: %v", d.ID, err)
		}
	}()
}

// IndexSection indexes one saved section (fire-and-forget to Meilisearch).
func (s *Service) IndexSection(rec SectionRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexSection(rec); err != nil {
			log.Printf("search: index section %s: %v", rec.ID, err)
		}
	}()
}

// DeleteDraft removes a draft from the search index (fire-and-forget).
func (s *Service) DeleteDraft(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteDraft(id); err != nil {
			log.Printf("search: delete draft %s: %v", id, err)
		}
	}()
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into
// Meilisearch. Called at startup and after save bursts settle.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	drafts, sections, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if len(drafts) > 0 {
		if err := s.meili.IndexDrafts(drafts); err != nil {
			log.Printf("search: reindex drafts: %v", err)
		}
	}
	if len(sections) > 0 {
		if err := s.meili.IndexSections(sections); err != nil {
			log.Printf("search: reindex sections: %v", err)
		}
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
