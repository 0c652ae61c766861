// Package index writes generated recommendations to Elasticsearch for
// analytics. Indexing is best effort and never fails a request.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const mapping = `{
  "mappings": {
    "properties": {
      "entityId":           {"type": "keyword"},
      "kind":               {"type": "keyword"},
      "scenario":           {"type": "keyword"},
      "provider":           {"type": "keyword"},
      "companyName":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "industry":           {"type": "keyword"},
      "sizeBucket":         {"type": "keyword"},
      "patternIds":         {"type": "keyword"},
      "categories":         {"type": "keyword"},
      "workflowCount":      {"type": "integer"},
      "totalAnnualSavings": {"type": "double"},
      "durationMonths":     {"type": "integer"},
      "completenessScore":  {"type": "integer"},
      "generatedAt":        {"type": "date"}
    }
  }
}`

// Document is the flattened analytics view of one generated result.
type Document struct {
	EntityID           string    `json:"entityId"`
	Kind               string    `json:"kind"`
	Scenario           string    `json:"scenario,omitempty"`
	Provider           string    `json:"provider"`
	CompanyName        string    `json:"companyName"`
	Industry           string    `json:"industry"`
	SizeBucket         string    `json:"sizeBucket"`
	PatternIDs         []string  `json:"patternIds,omitempty"`
	Categories         []string  `json:"categories,omitempty"`
	WorkflowCount      int       `json:"workflowCount,omitempty"`
	TotalAnnualSavings float64   `json:"totalAnnualSavings,omitempty"`
	DurationMonths     int       `json:"durationMonths,omitempty"`
	CompletenessScore  int       `json:"completenessScore"`
	GeneratedAt        time.Time `json:"generatedAt"`
}

// ID is stable per (entity, kind, scenario, provider) so regeneration
// overwrites the previous document.
func (d Document) ID() string {
	scenario := d.Scenario
	if scenario == "" {
		scenario = "any"
	}
	return strings.Join([]string{d.EntityID, d.Kind, scenario, d.Provider}, ":")
}

// WorkflowsDocument builds the document for a generated workflow set.
func WorkflowsDocument(profile *models.Profile, sizeBucket, provider string, set models.WorkflowSet) Document {
	doc := Document{
		EntityID:           profile.EntityID(),
		Kind:               string(models.KindWorkflows),
		Provider:           provider,
		CompanyName:        profile.Company.Name,
		Industry:           profile.Company.Industry,
		SizeBucket:         sizeBucket,
		WorkflowCount:      len(set.Workflows),
		TotalAnnualSavings: set.Analysis.TotalAnnualSavings,
		CompletenessScore:  set.Analysis.CompletenessScore,
		GeneratedAt:        set.GeneratedAt,
	}
	seen := make(map[string]bool)
	for _, w := range set.Workflows {
		if w.PatternID != "" {
			doc.PatternIDs = append(doc.PatternIDs, w.PatternID)
		}
		if c := string(w.Category); c != "" && !seen[c] {
			seen[c] = true
			doc.Categories = append(doc.Categories, c)
		}
	}
	return doc
}

// TimelineDocument builds the document for a generated timeline.
func TimelineDocument(profile *models.Profile, sizeBucket, provider string, completeness int, t models.Timeline) Document {
	return Document{
		EntityID:          profile.EntityID(),
		Kind:              string(models.KindTimeline),
		Scenario:          string(t.ScenarioType),
		Provider:          provider,
		CompanyName:       profile.Company.Name,
		Industry:          profile.Company.Industry,
		SizeBucket:        sizeBucket,
		DurationMonths:    t.TotalDurationMonths,
		CompletenessScore: completeness,
		GeneratedAt:       t.GeneratedAt,
	}
}

// Indexer writes documents into one index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index: %s", res.Status())
	}
	return nil
}

// Index writes doc. Callers treat failures as warnings.
func (i *Indexer) Index(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithDocumentID(doc.ID()),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document: %s", res.Status())
	}
	i.logger.Debug("Indexed recommendation", map[string]interface{}{
		"documentId": doc.ID(),
		"kind":       doc.Kind,
	})
	return nil
}

// CategoryCounts aggregates indexed workflow documents by category for one
// industry. An empty industry aggregates across all documents.
func (i *Indexer) CategoryCounts(ctx context.Context, industry string) (map[string]int64, error) {
	query := map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filters(industry),
			},
		},
		"aggs": map[string]interface{}{
			"categories": map[string]interface{}{
				"terms": map[string]interface{}{"field": "categories", "size": 20},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Aggregations struct {
			Categories struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"categories"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	counts := make(map[string]int64, len(parsed.Aggregations.Categories.Buckets))
	for _, b := range parsed.Aggregations.Categories.Buckets {
		counts[b.Key] = b.DocCount
	}
	return counts, nil
}

func filters(industry string) []interface{} {
	out := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"kind": string(models.KindWorkflows)}},
	}
	if industry != "" {
		out = append(out, map[string]interface{}{"term": map[string]interface{}{"industry": industry}})
	}
	return out
}
