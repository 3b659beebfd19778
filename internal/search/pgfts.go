package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across drafts and section_records using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	if q.OwnerID == "" {
		return nil, 0, fmt.Errorf("search query missing owner id")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text, q.OwnerID}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultDraft {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'draft'::text AS type, d.id, d.title,
				''::text AS snippet,
				d.id AS draft_id, d.status,
				ts_rank(d.fts, %s) AS rank
			FROM drafts d
			WHERE d.owner_id = $2 AND d.fts @@ %s`, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultSection {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'section'::text AS type, sr.draft_id || '/' || sr.section_id AS id, sr.section_id AS title,
				ts_headline('english', coalesce(sr.answers::text, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				sr.draft_id, ''::text AS status,
				ts_rank(sr.fts, %s) AS rank
			FROM section_records sr
			WHERE sr.owner_id = $2 AND sr.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, draft_id, status
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.DraftID, &r.Status); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		if r.Type == ResultSection {
			r.Title = schema.HumanizeID(r.Title)
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]DraftRecord, []SectionRecord, error) {
	draftRows, err := p.db.QueryContext(ctx, `
		SELECT id, owner_id, title, status
		FROM drafts
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load drafts: %w", err)
	}
	defer draftRows.Close()

	drafts := make([]DraftRecord, 0)
	for draftRows.Next() {
		var d DraftRecord
		if err := draftRows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Status); err != nil {
			return nil, nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := draftRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate drafts: %w", err)
	}

	sectionRows, err := p.db.QueryContext(ctx, `
		SELECT owner_id, draft_id, section_id, answers::text
		FROM section_records
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load sections: %w", err)
	}
	defer sectionRows.Close()

	sections := make([]SectionRecord, 0)
	for sectionRows.Next() {
		var s SectionRecord
		var body string
		if err := sectionRows.Scan(&s.OwnerID, &s.DraftID, &s.SectionID, &body); err != nil {
			return nil, nil, fmt.Errorf("scan section: %w", err)
		}
		s.ID = s.DraftID + "/" + s.SectionID
		s.Title = schema.HumanizeID(s.SectionID)
		s.Body = body
		sections = append(sections, s)
	}
	if err := sectionRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate sections: %w", err)
	}

	return drafts, sections, nil
}
