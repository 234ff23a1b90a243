package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewscope/internal/app"
	"reviewscope/internal/domain"
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
	s.mux.Get("/v1/companies", h.listCompanies)
	s.mux.Get("/v1/companies/{company}/reviews", h.listReviews)
	s.mux.Get("/v1/companies/{company}/stats", h.companyStats)
}

var sourceParams = map[string]domain.Source{
	"appstore":   domain.SourceAppStore,
	"googleplay": domain.SourceGooglePlay,
	"trustpilot": domain.SourceTrustpilot,
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listCompanies(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListCompanies(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list companies")
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	if company == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid company", "company is required")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	q := domain.ReviewsQuery{Company: company, Limit: limit}
	if sp := r.URL.Query().Get("source"); sp != "" {
		src, ok := sourceParams[sp]
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid source", "source must be one of appstore, googleplay, trustpilot")
			return
		}
		q.Source = src
	}

	out, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list reviews")
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) companyStats(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	out, err := h.Q.CompanyStats(r.Context(), company)
	if err != nil {
		if err == domain.ErrNotFound {
			writeProblem(w, http.StatusNotFound, "Not Found", "no reviews for company")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not compute stats")
		return
	}
	writeCached(w, r, out)
}
