package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/example/blog-records/internal/config"
	"github.com/example/blog-records/internal/models"
)

type Elastic struct {
	Client *elasticsearch.Client
	Index  string
}

// PostDocument is the indexed shape of a post.
type PostDocument struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Category string `json:"category,omitempty"`
}

type PostHit struct {
	PostDocument
	Score float64 `json:"score"`
}

func NewElastic(cfg *config.Config) (*Elastic, error) {
	cfgES := elasticsearch.Config{
		Addresses: []string{cfg.ElasticAddr},
	}
	if cfg.ElasticUsername != "" {
		cfgES.Username = cfg.ElasticUsername
		cfgES.Password = cfg.ElasticPassword
	}
	client, err := elasticsearch.NewClient(cfgES)
	if err != nil {
		return nil, err
	}
	index := cfg.ElasticIndex
	if index == "" {
		index = "posts"
	}
	return &Elastic{Client: client, Index: index}, nil
}

func NewPostDocument(p *models.Post) PostDocument {
	doc := PostDocument{ID: p.ID, Title: p.Title}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	if p.Summary != nil {
		doc.Summary = *p.Summary
	}
	if p.Category != nil {
		doc.Category = strings.ToLower(*p.Category)
	}
	return doc
}

func (e *Elastic) EnsurePostsIndex(ctx context.Context) error {
	res, err := e.Client.Indices.Exists([]string{e.Index}, e.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":       map[string]string{"type": "long"},
				"title":    map[string]string{"type": "text"},
				"content":  map[string]string{"type": "text"},
				"summary":  map[string]string{"type": "text"},
				"category": map[string]string{"type": "keyword"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	createRes, err := e.Client.Indices.Create(e.Index,
		e.Client.Indices.Create.WithContext(ctx),
		e.Client.Indices.Create.WithBody(bytes.NewReader(b)))
	if err != nil {
		return err
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}
	return nil
}

func (e *Elastic) IndexPost(ctx context.Context, doc PostDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: e.Index, DocumentID: strconv.FormatUint(uint64(doc.ID), 10), Body: bytes.NewReader(b), Refresh: "true"}
	res, err := req.Do(ctx, e.Client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// DeletePost removes a post document; a missing document is not an error.
func (e *Elastic) DeletePost(ctx context.Context, id uint) error {
	req := esapi.DeleteRequest{Index: e.Index, DocumentID: strconv.FormatUint(uint64(id), 10), Refresh: "true"}
	res, err := req.Do(ctx, e.Client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64      `json:"_score"`
			Source PostDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchPosts runs a full-text query over title, summary and content.
// A non-empty category narrows the results to that category.
func (e *Elastic) SearchPosts(ctx context.Context, query, category string, limit int) ([]PostHit, error) {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "summary", "content"},
			},
		},
	}
	if category != "" {
		boolQuery["filter"] = map[string]interface{}{
			"term": map[string]interface{}{"category": strings.ToLower(category)},
		}
	}
	if limit <= 0 {
		limit = 10
	}
	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  limit,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(bytes.NewReader(b)),
		e.Client.Search.WithTrackTotalHits(true),
		e.Client.Search.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}
	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	results := make([]PostHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		results = append(results, PostHit{PostDocument: h.Source, Score: h.Score})
	}
	return results, nil
}
