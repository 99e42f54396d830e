package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/tbuchert/accounting-api/internal/logging"
)

// Hit is one search result; Kind names the source index.
type Hit struct {
	Kind   string          `json:"kind"`
	Source json.RawMessage `json:"source"`
}

// Index upserts a document. Failures are logged and swallowed so a flaky
// cluster never fails the CRUD request that triggered the upsert.
func Index(ctx context.Context, es *elasticsearch.Client, index, id string, doc any) {
	if es == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "search.index", "index", index)

	data, err := json.Marshal(doc)
	if err != nil {
		l.Error("marshal document", "error", err)
		return
	}
	res, err := es.Index(index, bytes.NewReader(data), es.Index.WithDocumentID(id), es.Index.WithContext(ctx))
	if err != nil {
		l.Error("index document", "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("index document", "status", res.Status())
	}
}

// Delete removes a document; missing documents are fine.
func Delete(ctx context.Context, es *elasticsearch.Client, index, id string) {
	if es == nil {
		return
	}
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		logging.FromContext(ctx).Error("delete document", "index", index, "error", err)
		return
	}
	res.Body.Close()
}

// Query runs a fuzzy name/description match over the given indexes.
func Query(ctx context.Context, es *elasticsearch.Client, indexes []string, query string, from, size int) (int64, []Hit, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "notes"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(strings.Join(indexes, ",")),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Index  string          `json:"_index"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	hits := make([]Hit, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		hits[i] = Hit{Kind: h.Index, Source: h.Source}
	}
	return r.Hits.Total.Value, hits, nil
}
