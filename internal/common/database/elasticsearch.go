package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"appointment-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient wraps the client used to index calendar events.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch addresses are empty")
	}
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// BulkDocument is one index action in a bulk request.
type BulkDocument struct {
	ID     string
	Source interface{}
}

// BulkResult counts per-item outcomes. Failed holds the ids the cluster rejected.
type BulkResult struct {
	Indexed int
	Failed  []string
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	} `json:"items"`
}

// BulkIndex writes docs into index with one _bulk call. A transport or
// request-level failure is returned as an error; item failures are reported
// in the result.
func (c *ElasticsearchClient) BulkIndex(ctx context.Context, index string, docs []BulkDocument) (*BulkResult, error) {
	if len(docs) == 0 {
		return &BulkResult{}, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		action := map[string]interface{}{"index": map[string]interface{}{"_index": index, "_id": doc.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(doc.Source); err != nil {
			return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
	}

	res, err := c.Client.Bulk(&body,
		c.Client.Bulk.WithContext(ctx),
		c.Client.Bulk.WithIndex(index),
		c.Client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("bulk request error: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	result := &BulkResult{}
	for _, item := range parsed.Items {
		for _, outcome := range item {
			if outcome.Status >= 300 || len(outcome.Error) > 0 {
				result.Failed = append(result.Failed, outcome.ID)
			} else {
				result.Indexed++
			}
		}
	}
	return result, nil
}
