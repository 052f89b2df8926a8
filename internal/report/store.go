// Package report provides access to the Markdown reports generated by
// the diagnostics backend, plus full-text search over their content.
// Reports live on the backend; the store fetches them on demand and
// keeps an in-memory index so repeated searches do not refetch.
package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/sysscope/sysscope/internal/gateway"
)

// SearchResult is a single report search hit.
type SearchResult struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Fragment string  `json:"fragment,omitempty"`
}

// indexedReport is the document shape stored in the bleve index.
type indexedReport struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Store lists, fetches, and searches generated reports.
type Store struct {
	client gateway.Client

	mu      sync.Mutex
	index   bleve.Index
	names   map[string]string // report id -> display name
	indexed map[string]bool
}

// NewStore creates a Store with an empty in-memory index.
func NewStore(client gateway.Client) (*Store, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create report index: %w", err)
	}
	return &Store{
		client:  client,
		index:   index,
		names:   make(map[string]string),
		indexed: make(map[string]bool),
	}, nil
}

// List returns the reports available on the backend.
func (s *Store) List(ctx context.Context) ([]gateway.ReportInfo, error) {
	reports, err := s.client.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Get fetches one report's Markdown content and adds it to the index.
func (s *Store) Get(ctx context.Context, reportID string) (*gateway.Report, error) {
	r, err := s.client.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if err := s.add(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Search runs a full-text query over all available reports. Reports not
// yet indexed are fetched first; a report that fails to fetch is skipped
// rather than failing the whole search.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	reports, err := s.client.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}
	for _, info := range reports {
		s.mu.Lock()
		done := s.indexed[info.ID]
		s.mu.Unlock()
		if done {
			continue
		}
		r, err := s.client.GetReport(ctx, info.ID)
		if err != nil {
			continue
		}
		if err := s.add(r); err != nil {
			return nil, err
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Highlight = bleve.NewHighlight()

	s.mu.Lock()
	res, err := s.index.Search(req)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}

	results := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		s.mu.Lock()
		name := s.names[hit.ID]
		s.mu.Unlock()
		result := SearchResult{
			ID:    hit.ID,
			Name:  name,
			Score: hit.Score,
		}
		if fragments, ok := hit.Fragments["content"]; ok && len(fragments) > 0 {
			result.Fragment = fragments[0]
		}
		results = append(results, result)
	}
	return results, nil
}

// IndexedCount returns the number of reports currently indexed.
func (s *Store) IndexedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.indexed)
}

func (s *Store) add(r *gateway.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed[r.ID] {
		return nil
	}
	doc := indexedReport{Name: r.Name, Content: r.Content}
	if err := s.index.Index(r.ID, doc); err != nil {
		return fmt.Errorf("index report %s: %w", r.ID, err)
	}
	s.indexed[r.ID] = true
	s.names[r.ID] = r.Name
	return nil
}
