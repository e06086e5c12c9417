// Package search indexe le catalogue dans Elasticsearch pour la recherche plein texte.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"furniro_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "products"

var ErrUnavailable = errors.New("elasticsearch indisponible")

const productMapping = `{
	"mappings": {
		"properties": {
			"name":        {"type": "text"},
			"description": {"type": "text"},
			"category":    {"type": "keyword"},
			"tags":        {"type": "text"},
			"brand":       {"type": "text"},
			"price":       {"type": "long"}
		}
	}
}`

// productDoc est la forme indexée; _id est un champ réservé côté Elastic.
type productDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       int64    `json:"price"`
}

type ProductIndex struct {
	client *elasticsearch.Client
	index  string
}

// Connect crée le client et vérifie que le cluster répond.
func Connect(url, username, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("connexion Elasticsearch: %s", res.Status())
	}

	log.Println("✅ Connecté à Elasticsearch")
	return client, nil
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ProductIndex{client: client, index: index}
}

// EnsureIndex crée l'index avec son mapping s'il n'existe pas.
func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{p.index}}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: p.index,
		Body:  bytes.NewReader([]byte(productMapping)),
	}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création index %s: %s", p.index, res.String())
	}
	log.Printf("✅ Index Elasticsearch '%s' créé", p.index)
	return nil
}

func (p *ProductIndex) IndexProduct(ctx context.Context, product models.Product) error {
	data, err := json.Marshal(productDoc{
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Tags:        product.Tags,
		Brand:       product.Brand,
		Price:       product.Price,
	})
	if err != nil {
		return err
	}

	res, err := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: product.ID.Hex(),
		Body:       bytes.NewReader(data),
		Refresh:    "true", // rend la donnée immédiatement visible
	}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", product.Name, res.String())
	}
	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: p.index, DocumentID: id, Refresh: "true"}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("suppression %s: %s", id, res.String())
	}
	return nil
}

// Search renvoie les identifiants des produits correspondants, par pertinence.
func (p *ProductIndex) Search(ctx context.Context, filter models.ProductFilter) ([]string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(filter)); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  &buf,
	}.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s %s", ErrUnavailable, res.Status(), body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func buildQuery(filter models.ProductFilter) map[string]any {
	boolQuery := map[string]any{}
	if filter.Search != "" {
		boolQuery["must"] = []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     filter.Search,
					"fields":    []string{"name^3", "description", "category", "tags", "brand"},
					"fuzziness": "AUTO",
				},
			},
		}
	}
	if filter.Category != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"category": filter.Category}},
		}
	}
	return map[string]any{
		"size":  100,
		"query": map[string]any{"bool": boolQuery},
	}
}
