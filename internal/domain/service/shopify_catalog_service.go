package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"ragestate/internal/domain/entity"
)

// ShopifyCatalogService reads the merch catalog from the Shopify Storefront
// GraphQL API. Results are cached in memory; when the shop is unreachable
// callers get an empty catalog rather than an error so pages can render.
type ShopifyCatalogService struct {
	domain     string
	token      string
	cacheTTL   time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	cached    []*entity.Product
	fetchedAt time.Time
}

func NewShopifyCatalogService(domain, token string, cacheTTL time.Duration) *ShopifyCatalogService {
	return &ShopifyCatalogService{
		domain:   domain,
		token:    token,
		cacheTTL: cacheTTL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

const productsQuery = `{
  products(first: 50) {
    edges {
      node {
        id
        handle
        title
        description
        availableForSale
        images(first: 5) { edges { node { url } } }
        options { name values }
        priceRange { minVariantPrice { amount currencyCode } }
      }
    }
  }
}`

func (s *ShopifyCatalogService) FetchProducts(ctx context.Context) ([]*entity.Product, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		products := s.cached
		s.mu.RUnlock()
		return products, nil
	}
	s.mu.RUnlock()

	products, err := s.queryProducts(ctx)
	if err != nil {
		log.Printf("Shopify catalog unavailable, serving empty list: %v", err)
		return []*entity.Product{}, nil
	}

	s.mu.Lock()
	s.cached = products
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return products, nil
}

func (s *ShopifyCatalogService) FetchProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	products, err := s.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %q not in catalog", slug)
}

type shopifyProductsResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID               string `json:"id"`
					Handle           string `json:"handle"`
					Title            string `json:"title"`
					Description      string `json:"description"`
					AvailableForSale bool   `json:"availableForSale"`
					Images           struct {
						Edges []struct {
							Node struct {
								URL string `json:"url"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"images"`
					Options []struct {
						Name   string   `json:"name"`
						Values []string `json:"values"`
					} `json:"options"`
					PriceRange struct {
						MinVariantPrice struct {
							Amount       string `json:"amount"`
							CurrencyCode string `json:"currencyCode"`
						} `json:"minVariantPrice"`
					} `json:"priceRange"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
}

func (s *ShopifyCatalogService) queryProducts(ctx context.Context) ([]*entity.Product, error) {
	endpoint := fmt.Sprintf("https://%s/api/2024-01/graphql.json", s.domain)

	payload, err := json.Marshal(map[string]string{"query": productsQuery})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed shopifyProductsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	var products []*entity.Product
	for _, edge := range parsed.Data.Products.Edges {
		node := edge.Node

		product := &entity.Product{
			ID:          node.ID,
			Slug:        node.Handle,
			Title:       node.Title,
			Description: node.Description,
			Currency:    node.PriceRange.MinVariantPrice.CurrencyCode,
			Available:   node.AvailableForSale,
		}

		fmt.Sscanf(node.PriceRange.MinVariantPrice.Amount, "%f", &product.Price)

		for _, img := range node.Images.Edges {
			product.ImageURLs = append(product.ImageURLs, img.Node.URL)
		}
		for _, opt := range node.Options {
			switch opt.Name {
			case "Color":
				product.Colors = opt.Values
			case "Size":
				product.Sizes = opt.Values
			}
		}

		products = append(products, product)
	}

	return products, nil
}
