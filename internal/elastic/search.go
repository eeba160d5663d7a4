package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

var ErrUnknownType = errors.New("unknown search type")

// searchFields lists the fields each index is matched on, with boosts.
var searchFields = map[string][]string{
	IdxUsers:      {"name^3", "bio", "skills^2", "email"},
	IdxProjects:   {"title^3", "description", "tags^2", "tech_stack^2", "difficulty"},
	IdxHackathons: {"title^3", "description", "organizer", "location", "tags^2", "tech_stack^2"},
}

type Hit struct {
	ID     string          `json:"id"`
	Score  float64         `json:"score"`
	Source json.RawMessage `json:"source"`
}

type Result struct {
	Type  string `json:"type"`
	Total int64  `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Searcher runs discovery queries against the projected indices.
type Searcher struct {
	ES *es.Client
}

// Query builds the request body for a free-text search on index. An empty
// q matches everything, newest first.
func Query(index, q string, size int) ([]byte, error) {
	fields, ok := searchFields[index]
	if !ok {
		return nil, ErrUnknownType
	}
	var body map[string]any
	if q == "" {
		body = map[string]any{
			"query": map[string]any{"match_all": map[string]any{}},
			"sort":  []any{map[string]any{"updated_at": map[string]any{"order": "desc"}}},
		}
	} else {
		body = map[string]any{
			"query": map[string]any{"multi_match": map[string]any{
				"query":     q,
				"fields":    fields,
				"fuzziness": "AUTO",
			}},
		}
	}
	body["size"] = size
	return json.Marshal(body)
}

func (s *Searcher) Search(ctx context.Context, kind, q string, size int) (*Result, error) {
	index, ok := IndexForSearch(kind)
	if !ok {
		return nil, ErrUnknownType
	}
	body, err := Query(index, q, size)
	if err != nil {
		return nil, err
	}
	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(index),
		s.ES.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.String())
	}

	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Score  *float64        `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &Result{Type: kind, Total: raw.Hits.Total.Value, Hits: make([]Hit, 0, len(raw.Hits.Hits))}
	for _, h := range raw.Hits.Hits {
		hit := Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}
