// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

const (
	defaultTermLimit = 20
	maxTermLimit     = 200
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/dataset", h.getDataset)
		r.Post("/dataset/reload", h.reloadDataset)
		r.Get("/dashboard", h.getDashboard)
		r.Get("/options", h.getOptions)
		r.Get("/metrics", h.getMetrics)
		r.Get("/reviews", h.listReviews)
		r.Get("/aggregates/{group}", h.getAggregate)
		r.Get("/negative/{field}", h.getNegativeTexts)
		r.Get("/negative/{field}/terms", h.getNegativeTerms)
		r.Get("/negative/{field}/sentiment", h.getNegativeSentiment)
		r.Get("/negative/{field}/cloud", h.getNegativeCloud)
	})
}

// parseSelection reads start, end and the repeated brand, category, product
// and rating parameters.
func parseSelection(q url.Values) (domain.Selection, error) {
	var sel domain.Selection
	date := func(k string) (*time.Time, error) {
		v := q.Get(k)
		if v == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation(time.DateOnly, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s must be YYYY-MM-DD", k)
		}
		return &t, nil
	}
	var err error
	if sel.Start, err = date("start"); err != nil {
		return sel, err
	}
	if sel.End, err = date("end"); err != nil {
		return sel, err
	}
	sel.Brands = q["brand"]
	sel.Categories = q["category"]
	sel.Products = q["product"]
	for _, v := range q["rating"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return sel, fmt.Errorf("rating must be an integer, got %q", v)
		}
		sel.Ratings = append(sel.Ratings, n)
	}
	return sel, nil
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrParse):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownField):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrNotConfigured):
		writeProblem(w, http.StatusNotImplemented, "Not Configured", err.Error())
	case errors.Is(err, domain.ErrDatasetUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Dataset Unavailable", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return etagOf(body), body
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeBody sends body with its ETag, or 304 when the client already has it.
func writeBody(w http.ResponseWriter, r *http.Request, etag, ctype string, body []byte) {
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	writeBody(w, r, etag, "application/json", body)
}

// selection parses the query or writes a 400 and reports false.
func selection(w http.ResponseWriter, r *http.Request) (domain.Selection, bool) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return sel, false
	}
	return sel, true
}

func (h *Handlers) getDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.Q.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, info)
}

func (h *Handlers) reloadDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.Q.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("version", info.Version).Int("rows", info.Rows).Msg("dataset reloaded on request")
	writeJSON(w, r, info)
}

func (h *Handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := selection(w, r)
	if !ok {
		return
	}
	v, err := h.Q.Dashboard(r.Context(), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

func (h *Handlers) getOptions(w http.ResponseWriter, r *http.Request) {
	sel, ok := selection(w, r)
	if !ok {
		return
	}
	v, err := h.Q.Options(r.Context(), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

func (h *Handlers) getMetrics(w http.ResponseWriter, r *http.Request) {
	sel, ok := selection(w, r)
	if !ok {
		return
	}
	v, err := h.Q.Metrics(r.Context(), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	sel, ok := selection(w, r)
	if !ok {
		return
	}
	v, err := h.Q.Reviews(r.Context(), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

func (h *Handlers) getAggregate(w http.ResponseWriter, r *http.Request) {
	sel, ok := selection(w, r)
	if !ok {
		return
	}
	v, err := h.Q.Aggregate(r.Context(), sel, chi.URLParam(r, "group"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

// negativeRequest resolves the text field and selection shared by the
// negative-comment routes.
func negativeRequest(w http.ResponseWriter, r *http.Request) (domain.Selection, domain.TextField, bool) {
	field, err := analysis.ParseTextField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, err)
		return domain.Selection{}, "", false
	}
	sel, ok := selection(w, r)
	return sel, field, ok
}

func (h *Handlers) getNegativeTexts(w http.ResponseWriter, r *http.Request) {
	sel, field, ok := negativeRequest(w, r)
	if !ok {
		return
	}
	texts, err := h.Q.NegativeTexts(r.Context(), sel, field)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, texts)
}

func (h *Handlers) getNegativeTerms(w http.ResponseWriter, r *http.Request) {
	sel, field, ok := negativeRequest(w, r)
	if !ok {
		return
	}
	limit := defaultTermLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxTermLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxTermLimit))
			return
		}
		limit = l
	}
	terms, err := h.Q.NegativeTerms(r.Context(), sel, field, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, terms)
}

func (h *Handlers) getNegativeSentiment(w http.ResponseWriter, r *http.Request) {
	sel, field, ok := negativeRequest(w, r)
	if !ok {
		return
	}
	v, err := h.Q.NegativeSentiment(r.Context(), sel, field)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, v)
}

func (h *Handlers) getNegativeCloud(w http.ResponseWriter, r *http.Request) {
	sel, field, ok := negativeRequest(w, r)
	if !ok {
		return
	}
	img, ctype, err := h.Q.NegativeCloud(r.Context(), sel, field)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, r, etagOf(img), ctype, img)
}
