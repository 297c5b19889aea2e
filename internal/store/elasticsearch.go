package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// ESIndex keeps a full-text searchable copy of persisted listings in
// Elasticsearch. It is optional: when not configured, the database
// fallback uses SQL matching instead.
type ESIndex struct {
	client    *elasticsearch.Client
	indexName string
}

// NewESIndex creates the index client and verifies connectivity.
func NewESIndex(addresses []string, indexName string) (*ESIndex, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ESIndex{
		client:    client,
		indexName: indexName,
	}, nil
}

// docID builds the stable document id from the listing's natural key.
func docID(l domain.Listing) string {
	return string(l.Source) + ":" + l.ExternalID
}

// BulkIndex indexes multiple listings at once
func (i *ESIndex) BulkIndex(ctx context.Context, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	var buf bytes.Buffer

	for _, l := range listings {
		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    docID(l),
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(l)
		if err != nil {
			log.Printf("[es] marshal listing %s: %v", docID(l), err)
			continue
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				log.Printf("[es] bulk index error for %s: %s - %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
	}

	return nil
}

// Search runs a free-text match over title, description and company
// and returns one page of listings plus the total hit count.
func (i *ESIndex) Search(ctx context.Context, text string, page, limit int) ([]domain.Listing, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	query := map[string]any{
		"from": (page - 1) * limit,
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{"title^2", "description", "company"},
			},
		},
		"sort": []map[string]any{
			{"posted_at": map[string]any{"order": "desc", "missing": "_last"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(bytes.NewReader(body)),
		i.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.Status())
	}

	var searchRes struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source domain.Listing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchRes); err != nil {
		return nil, 0, fmt.Errorf("parse search response: %w", err)
	}

	listings := make([]domain.Listing, 0, len(searchRes.Hits.Hits))
	for _, h := range searchRes.Hits.Hits {
		listings = append(listings, h.Source)
	}

	return listings, searchRes.Hits.Total.Value, nil
}

// EnsureIndex creates the index with its mapping if it doesn't exist
func (i *ESIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName})
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"source": {"type": "keyword"},
				"external_id": {"type": "keyword"},
				"internal_id": {"type": "long"},
				"title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"company": {"type": "text"},
				"description": {"type": "text"},
				"requirements": {"type": "text"},
				"location": {"type": "text"},
				"salary_min": {"type": "double"},
				"salary_max": {"type": "double"},
				"salary_period": {"type": "keyword"},
				"employment_type": {"type": "keyword"},
				"url": {"type": "keyword"},
				"posted_at": {"type": "date"}
			}
		}
	}`

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}
