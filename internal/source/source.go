// Package source fetches product collections and keeps the analytics
// snapshot current through a retrying, periodically refreshed loader.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"product-dashboard/internal/config"
	"product-dashboard/internal/models"
)

// ErrEmptyResult is returned when a source answers successfully but carries
// no products. The loader retries it on a shorter delay than hard failures.
var ErrEmptyResult = errors.New("source returned no products")

type Source interface {
	Fetch(ctx context.Context) ([]models.Product, error)
	Name() string
}

// StatusError reports a non-2xx answer from the upstream service.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s answered %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// FromConfig builds the source selected by cfg.Kind.
func FromConfig(cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case "http":
		return NewHTTPSource(cfg.URL, cfg.Timeout), nil
	case "static":
		return NewStaticSource(cfg.StaticPath), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// OptionsFromConfig maps the refresh settings onto loader options.
func OptionsFromConfig(cfg config.RefreshConfig, fetchTimeout time.Duration) Options {
	return Options{
		RetryDelay:    cfg.RetryDelay,
		EmptyDelay:    cfg.EmptyDelay,
		BackoffFactor: cfg.BackoffFactor,
		MaxRetryDelay: cfg.MaxRetryDelay,
		MaxAttempts:   cfg.MaxAttempts,
		Schedule:      cfg.Schedule,
		FetchTimeout:  fetchTimeout,
	}
}
