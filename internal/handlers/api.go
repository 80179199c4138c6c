package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"product-dashboard/internal/aggregate"
	"product-dashboard/internal/errors"
	"product-dashboard/internal/models"
	"product-dashboard/internal/observability"
	"product-dashboard/internal/services"
	"product-dashboard/internal/source"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// Refresher is the part of the loader the handlers drive.
type Refresher interface {
	Status() models.LoadStatus
	Refresh(ctx context.Context) error
}

type APIHandlers struct {
	analytics *services.Analytics
	loader    Refresher
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, loader Refresher, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		loader:    loader,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, toAppError(err), observability.GetRequestID(r.Context()))
}

func toAppError(err error) error {
	var status *source.StatusError
	switch {
	case stderrors.Is(err, services.ErrNoData):
		return errors.Loading(err)
	case stderrors.Is(err, services.ErrProductNotFound):
		return errors.NotFound("Product not found")
	case stderrors.Is(err, source.ErrStopped):
		return errors.ServiceUnavailable("Loader is shutting down")
	case stderrors.Is(err, source.ErrEmptyResult):
		return errors.Upstream(err, "Upstream returned no products")
	case stderrors.As(err, &status):
		return errors.Upstream(err, "Upstream request failed")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Upstream(err, "Upstream request timed out")
	}
	return err
}

func versionHeaders(version uint64) map[string]string {
	return map[string]string{
		"Cache-Control":      "no-cache",
		"X-Snapshot-Version": strconv.FormatUint(version, 10),
	}
}

// dashboard resolves the period query parameter and returns the matching
// cached view.
func (h *APIHandlers) dashboard(r *http.Request) (*services.Dashboard, error) {
	window, err := aggregate.ParseWindow(r.URL.Query().Get("period"))
	if err != nil {
		return nil, errors.ValidationWrap(err, "Invalid period, expected one of all, 1m, 3m, 6m, 1y")
	}
	return h.analytics.Dashboard(r.Context(), window)
}

// view writes one section of the dashboard for the requested period.
func (h *APIHandlers) view(section func(*services.Dashboard) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.dashboard(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		errors.WriteSuccessWithHeaders(w, section(d), versionHeaders(d.Version))
	}
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d })(w, r)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any {
		return map[string]any{
			"window":       d.Window,
			"records":      d.Records,
			"summary":      d.Summary,
			"rating_stock": d.RatingStock,
			"correlation":  d.Correlation,
			"monthly":      d.Monthly,
		}
	})(w, r)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Categories })(w, r)
}

func (h *APIHandlers) HandleTags(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Tags })(w, r)
}

func (h *APIHandlers) HandleColors(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Colors })(w, r)
}

func (h *APIHandlers) HandleSizes(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Sizes })(w, r)
}

func (h *APIHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Sales })(w, r)
}

func (h *APIHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	h.view(func(d *services.Dashboard) any { return d.Insights })(w, r)
}

func (h *APIHandlers) HandleTop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	field := aggregate.Sales
	if name := q.Get("field"); name != "" {
		f, err := aggregate.ParseField(name)
		if err != nil {
			h.fail(w, r, errors.ValidationWrap(err, "Invalid field"))
			return
		}
		field = f
	}
	dir, err := aggregate.ParseDirection(q.Get("dir"))
	if err != nil {
		h.fail(w, r, errors.ValidationWrap(err, "Invalid direction, expected asc or desc"))
		return
	}
	n, err := intParam(q.Get("n"), defaultTopN)
	if err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, "n must be a number"))
		return
	}
	if n < 1 || n > maxTopN {
		h.fail(w, r, errors.Validation("n must be between 1 and 100"))
		return
	}

	items, err := h.analytics.Top(field, dir, n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, map[string]any{
		"field": field.Name,
		"dir":   dir.String(),
		"items": items,
	})
}

func (h *APIHandlers) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err := fieldParam(q.Get("x"), aggregate.Volume)
	if err != nil {
		h.fail(w, r, errors.ValidationWrap(err, "Invalid x field"))
		return
	}
	y, err := fieldParam(q.Get("y"), aggregate.Quantity)
	if err != nil {
		h.fail(w, r, errors.ValidationWrap(err, "Invalid y field"))
		return
	}

	c, err := h.analytics.Correlate(x, y)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, c)
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, "page must be a number"))
		return
	}
	perPage, err := intParam(q.Get("per_page"), 10)
	if err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, "per_page must be a number"))
		return
	}
	if perPage > maxTopN {
		h.fail(w, r, errors.Validation("per_page must be at most 100"))
		return
	}

	c := aggregate.Criteria{
		Name:        q.Get("q"),
		ID:          q.Get("id"),
		Category:    q.Get("category"),
		Description: q.Get("description"),
	}
	result, err := h.analytics.Search(c, page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, result)
}

func (h *APIHandlers) HandleProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.fail(w, r, errors.BadRequest("product id is required"))
		return
	}
	p, err := h.analytics.Product(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, p)
}

func (h *APIHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.loader.Status())
}

// HandleRefresh fetches right away and answers with the resulting status.
func (h *APIHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.loader.Refresh(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, h.loader.Status())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.loader.Status()
	healthData := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().Format(time.RFC3339),
		"version":     "1.0.0",
		"data_loaded": h.analytics.HasData(),
		"loading":     status.Loading,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()
	stats["loader"] = h.loader.Status()
	stats["thresholds"] = h.analytics.Thresholds()

	errors.WriteSuccess(w, stats)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func fieldParam(s string, def aggregate.Field) (aggregate.Field, error) {
	if s == "" {
		return def, nil
	}
	return aggregate.ParseField(s)
}
