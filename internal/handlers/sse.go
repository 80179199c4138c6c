package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"product-dashboard/internal/aggregate"
	"product-dashboard/internal/models"
	"product-dashboard/internal/services"
	"product-dashboard/internal/ui/templates"
)

const maxTableRows = 50

type SSEHandlers struct {
	analytics *services.Analytics
	loader    Refresher
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, loader Refresher, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		loader:    loader,
		logger:    logger,
	}
}

type pageSignals struct {
	Period string `json:"period"`
}

// window reads the period from the page signals, falling back to the query
// string and then to the whole collection.
func (h *SSEHandlers) window(r *http.Request) aggregate.Window {
	var signals pageSignals
	if r.URL.Query().Has("datastar") {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			h.logger.Warn("read signals", "error", err)
		}
	}
	if signals.Period == "" {
		signals.Period = r.URL.Query().Get("period")
	}
	w, err := aggregate.ParseWindow(signals.Period)
	if err != nil {
		h.logger.Warn("unknown period, using all", "period", signals.Period)
	}
	return w
}

func render(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patch(sse *datastar.ServerSentEventGenerator, r *http.Request, name string, c templ.Component) bool {
	html, err := render(r.Context(), c)
	if err != nil {
		h.logger.Error("render "+name, "error", err)
		return false
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Debug("patch "+name, "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) signals(sse *datastar.ServerSentEventGenerator, data map[string]any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

// status patches the banner and reports whether a snapshot is available.
func (h *SSEHandlers) status(sse *datastar.ServerSentEventGenerator, r *http.Request) bool {
	st := h.loader.Status()
	h.patch(sse, r, "status", templates.StatusBanner(st))
	h.signals(sse, map[string]any{
		"loading":  st.Loading,
		"retrying": st.Retrying,
		"failed":   st.Failed,
	})
	return h.analytics.HasData()
}

// dashboard returns nil when there is nothing to show yet. The status
// banner already tells the user why.
func (h *SSEHandlers) dashboard(r *http.Request) *services.Dashboard {
	d, err := h.analytics.Dashboard(r.Context(), h.window(r))
	if err != nil {
		if !stderrors.Is(err, services.ErrNoData) && r.Context().Err() == nil {
			h.logger.Error("compute dashboard", "error", err)
		}
		return nil
	}
	return d
}

func limitGroups(d *services.Dashboard) []models.Group {
	if len(d.Categories) > maxTableRows {
		return d.Categories[:maxTableRows]
	}
	return d.Categories
}

func (h *SSEHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.status(sse, r)
	flush(w)
}

func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if d := h.dashboard(r); d != nil {
		h.patch(sse, r, "summary", templates.SummaryCards(d.Summary, d.Sales.Totals))
		h.signals(sse, map[string]any{"monthlyData": d.Monthly})
	} else {
		h.status(sse, r)
	}
	flush(w)
}

func (h *SSEHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if d := h.dashboard(r); d != nil {
		h.patch(sse, r, "categories", templates.CategoryTable(limitGroups(d)))
		h.signals(sse, map[string]any{"categoriesData": d.Categories})
	} else {
		h.status(sse, r)
	}
	flush(w)
}

func (h *SSEHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if d := h.dashboard(r); d != nil {
		h.patch(sse, r, "insights", templates.InsightsPanel(d.Insights))
	} else {
		h.status(sse, r)
	}
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if !h.status(sse, r) {
		flush(w)
		return
	}
	d := h.dashboard(r)
	if d == nil {
		flush(w)
		return
	}

	h.patch(sse, r, "summary", templates.SummaryCards(d.Summary, d.Sales.Totals))
	h.patch(sse, r, "categories", templates.CategoryTable(limitGroups(d)))
	h.patch(sse, r, "insights", templates.InsightsPanel(d.Insights))

	// Send all chart data in one call
	h.signals(sse, map[string]any{
		"categoriesData": d.Categories,
		"tagsData":       d.Tags,
		"monthlyData":    d.Monthly,
		"salesData":      d.Sales.ByCategory,
	})
	flush(w)
}
