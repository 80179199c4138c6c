package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"product-dashboard/internal/models"
)

const maxBodySize = 32 << 20

// HTTPSource reads the product array from a plain unauthenticated GET.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	var products []models.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrEmptyResult
	}
	return products, nil
}

// Close drops idle keep-alive connections to the upstream.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
