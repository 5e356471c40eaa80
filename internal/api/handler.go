// Package api serves the ScholarPath read API over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/scholarpath/internal/apperr"
	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/profile"
	"github.com/sells-group/scholarpath/internal/provenance"
	"github.com/sells-group/scholarpath/internal/query"
	"github.com/sells-group/scholarpath/internal/store"
)

// readyTimeout bounds the store ping behind /readyz.
const readyTimeout = 2 * time.Second

// Handler holds the dependencies of the API routes.
type Handler struct {
	store    store.Store
	profiles *profile.Service
	cache    *ResponseCache
}

// NewHandler creates a Handler. cache may be nil.
func NewHandler(st store.Store, cache *ResponseCache) *Handler {
	return &Handler{
		store:    st,
		profiles: profile.NewService(st),
		cache:    cache,
	}
}

// RegisterRoutes mounts the health probes and the /v1 read API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)

	r.Route("/v1", func(r chi.Router) {
		if h.cache != nil {
			r.Use(cached(h.cache))
		}
		r.Get("/metrics", h.handleMetrics)
		r.Get("/profile/{cohort}", h.handleProfile)
		r.Get("/provenance", h.handleProvenance)
		r.Get("/source-schools", h.handleSourceSchools)
		r.Get("/campuses", h.handleCampuses)
		r.Get("/majors", h.handleMajors)
		r.Get("/datasets", h.handleDatasets)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	body := map[string]any{"status": "ready"}
	if h.cache != nil {
		body["cache"] = h.cache.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	f, err := query.ParseMetricFilter(params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cursor, err := query.ParseCursor(params.Get("cursor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := query.ClampLimit(params.Get("limit"))

	rows, err := h.store.ListMetrics(r.Context(), query.PageQuery(f.Predicates(), cursor, limit))
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}

	items, next := query.Paginate(rows, limit, func(m model.Metric) int64 { return m.ID })
	if items == nil {
		items = []model.Metric{}
	}
	writeJSON(w, http.StatusOK, model.MetricPage{
		Items:    items,
		PageInfo: model.PageInfo{NextCursor: next},
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	req := profile.Request{
		Campus:     params.Get("campus"),
		Cohort:     model.Cohort(chi.URLParam(r, "cohort")),
		Major:      params.Get("major"),
		Discipline: params.Get("discipline"),
		Years:      query.ParseYears(params["years"]),
	}

	p, err := h.profiles.Assemble(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleProvenance(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseProvenanceFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := h.store.ListProvenanceRows(r.Context(), f.Predicates(), provenance.MaxRows)
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}
	writeJSON(w, http.StatusOK, provenance.Aggregate(rows))
}

func (h *Handler) handleSourceSchools(w http.ResponseWriter, r *http.Request) {
	f := query.ParseSourceSchoolFilter(r.URL.Query())

	schools, err := h.store.ListSourceSchools(r.Context(), f.Predicates(), store.SourceSchoolLimit)
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(schools))
}

func (h *Handler) handleCampuses(w http.ResponseWriter, r *http.Request) {
	f := query.CampusFilter{System: r.URL.Query().Get("system")}

	campuses, err := h.store.ListCampuses(r.Context(), f.Predicates())
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(campuses))
}

func (h *Handler) handleMajors(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	f := query.MajorFilter{Campus: params.Get("campus"), Search: params.Get("search")}

	majors, err := h.store.ListMajors(r.Context(), f.Predicates())
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(majors))
}

func (h *Handler) handleDatasets(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseDatasetFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	datasets, err := h.store.ListDatasets(r.Context(), f.Predicates())
	if err != nil {
		writeError(w, r, apperr.Store(err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(datasets))
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
