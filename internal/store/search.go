// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"grant-workers/internal/models"
)

// SearchSource reads candidates from the announcement index. It mirrors the
// AnnouncementStore queries so either can feed the ranker.
type SearchSource struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchSource(client *elasticsearch.Client, index string) *SearchSource {
	return &SearchSource{client: client, index: index}
}

type announcementDocument struct {
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	Organization  string                      `json:"organization"`
	Category      string                      `json:"category"`
	SupportType   string                      `json:"support_type"`
	SupportAmount string                      `json:"support_amount"`
	Status        string                      `json:"status"`
	End           *models.Date                `json:"application_end"`
	Criteria      *models.EligibilityCriteria `json:"eligibility_criteria"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string               `json:"_id"`
			Source announcementDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *SearchSource) ActiveCandidates(ctx context.Context, today time.Time, limit int) ([]*models.Announcement, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": activeFilters(today),
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"application_end": map[string]interface{}{"order": "asc"}},
		},
	}
	return s.search(ctx, "active_candidates", body, limit)
}

func (s *SearchSource) ByIDs(ctx context.Context, ids []string) ([]*models.Announcement, error) {
	if len(ids) == 0 {
		return []*models.Announcement{}, nil
	}
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"ids": map[string]interface{}{"values": ids},
		},
	}
	return s.search(ctx, "announcements_by_id", body, len(ids))
}

func (s *SearchSource) CreatedSince(ctx context.Context, since, today time.Time, limit int) ([]*models.Announcement, error) {
	filters := append(activeFilters(today), map[string]interface{}{
		"range": map[string]interface{}{
			"created_at": map[string]interface{}{"gte": since.UTC().Format(time.RFC3339)},
		},
	})
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
	return s.search(ctx, "created_since", body, limit)
}

func activeFilters(today time.Time) []interface{} {
	return []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"status": "active"}},
		map[string]interface{}{"exists": map[string]interface{}{"field": "eligibility_criteria"}},
		map[string]interface{}{"range": map[string]interface{}{
			"application_end": map[string]interface{}{"gte": dateOnly(today).Format("2006-01-02")},
		}},
	}
}

func (s *SearchSource) search(ctx context.Context, name string, body map[string]interface{}, size int) ([]*models.Announcement, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode query: %w", name, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(payload),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%s: search failed: %s", name, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", name, err)
	}

	out := make([]*models.Announcement, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := hit.Source
		id := doc.ID
		if id == "" {
			id = hit.ID
		}
		out = append(out, &models.Announcement{
			ID:             id,
			Title:          doc.Title,
			Organization:   doc.Organization,
			Category:       doc.Category,
			SupportType:    doc.SupportType,
			SupportAmount:  doc.SupportAmount,
			ApplicationEnd: doc.End,
			Eligibility:    doc.Criteria,
		})
	}
	return out, nil
}
