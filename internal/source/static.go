package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"product-dashboard/internal/data"
	"product-dashboard/internal/models"
)

// StaticSource decodes products from a JSON file, or from the bundled data
// set when no path is given.
type StaticSource struct {
	path string
}

func NewStaticSource(path string) *StaticSource {
	return &StaticSource{path: path}
}

func (s *StaticSource) Name() string {
	if s.path == "" {
		return "bundled"
	}
	return s.path
}

func (s *StaticSource) Fetch(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := data.Products
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		raw = b
	}

	var products []models.Product
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Name(), err)
	}
	if len(products) == 0 {
		return nil, ErrEmptyResult
	}
	return products, nil
}
