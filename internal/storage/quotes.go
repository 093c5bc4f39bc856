// internal/storage/quotes.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"gt-analyzer/internal/common/database"
	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/models"
)

const defaultQuoteIndex = "gt-quotes"

// QuoteDocument is one supporting quote indexed for full-text search,
// keyed back to the run and code it supports.
type QuoteDocument struct {
	RunID      string    `json:"runId"`
	Code       string    `json:"code"`
	Quote      string    `json:"quote"`
	Frequency  int       `json:"frequency"`
	Confidence float64   `json:"confidence"`
	IndexedAt  time.Time `json:"indexedAt"`
}

// QuoteHit is one search match.
type QuoteHit struct {
	Document QuoteDocument
	Score    float64
}

// QuoteIndex makes the supporting quotes of a completed run searchable
// in Elasticsearch.
type QuoteIndex struct {
	client *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewQuoteIndex(client *database.ElasticsearchClient, index string, log logger.Logger) *QuoteIndex {
	if index == "" {
		index = defaultQuoteIndex
	}
	return &QuoteIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "quote-index", "index": index}),
	}
}

// IndexResult indexes every supporting quote of every kept code. A
// single failed document aborts the walk; quotes are re-indexable, so a
// retry re-runs the whole result.
func (q *QuoteIndex) IndexResult(ctx context.Context, result *models.AnalysisResult) error {
	indexed := 0
	for _, code := range result.Codes {
		for _, quote := range code.SupportingQuotes {
			doc := QuoteDocument{
				RunID:      result.Metadata.RunID,
				Code:       code.Name,
				Quote:      quote,
				Frequency:  code.Frequency,
				Confidence: code.Confidence,
				IndexedAt:  time.Now().UTC(),
			}
			if err := q.indexDocument(ctx, doc); err != nil {
				return err
			}
			indexed++
		}
	}

	q.logger.Info("Quotes indexed", map[string]interface{}{
		"runId":  result.Metadata.RunID,
		"quotes": indexed,
	})
	return nil
}

func (q *QuoteIndex) indexDocument(ctx context.Context, doc QuoteDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	req := esapi.IndexRequest{
		Index:      q.index,
		DocumentID: uuid.New().String(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, q.client.Client)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewStorageUnavailableError(fmt.Errorf("index document failed: %s", res.String()))
	}
	return nil
}

// SearchQuotes runs a match query over the quote text and returns the
// hits ranked by score.
func (q *QuoteIndex) SearchQuotes(ctx context.Context, query string) ([]QuoteHit, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"quote": query,
			},
		},
	}
	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{q.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, q.client.Client)
	if err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewStorageUnavailableError(fmt.Errorf("search failed: %s", res.String()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64         `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}

	hits := make([]QuoteHit, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var doc QuoteDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			q.logger.Warn("Skipping undecodable quote hit", map[string]interface{}{"error": err.Error()})
			continue
		}
		hits = append(hits, QuoteHit{Document: doc, Score: hit.Score})
	}
	return hits, nil
}
