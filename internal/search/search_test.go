package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"furniro_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type capture struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*ProductIndex, *capture) {
	t.Helper()
	rec := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProductIndex(client, "products"), rec
}

func TestSearch_ReturnsHitIDs(t *testing.T) {
	idx, rec := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[{"_id":"a1","_source":{}},{"_id":"b2","_source":{}}]}}`))
	})

	ids, err := idx.Search(context.Background(), models.ProductFilter{Category: "Sofas", Search: "grey"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b2"}, ids)

	require.Len(t, rec.requests, 1)
	assert.Equal(t, "POST /products/_search", rec.requests[0])

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.bodies[0]), &q))
	boolQ := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.Contains(t, boolQ, "must")
	assert.Contains(t, boolQ, "filter")
}

func TestSearch_ErrorResponse(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"index_not_found_exception"}`))
	})

	_, err := idx.Search(context.Background(), models.ProductFilter{Search: "chair"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIndexProduct_UsesHexIDAndOmitsMongoID(t *testing.T) {
	idx, rec := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":"created"}`))
	})
	p := models.Product{ID: primitive.NewObjectID(), Name: "Grifo", Category: "Living", Price: 150000}

	require.NoError(t, idx.IndexProduct(context.Background(), p))

	require.Len(t, rec.requests, 1)
	assert.Equal(t, "PUT /products/_doc/"+p.ID.Hex(), rec.requests[0])
	assert.False(t, strings.Contains(rec.bodies[0], `"_id"`))
	assert.Contains(t, rec.bodies[0], `"name":"Grifo"`)
}

func TestDeleteProduct_MissingIsNotAnError(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, idx.DeleteProduct(context.Background(), "abc"))
}

func TestBuildQuery_EmptyFilterMatchesAll(t *testing.T) {
	q := buildQuery(models.ProductFilter{})
	boolQ := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.Empty(t, boolQ)
}
