package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/metrics"
	"github.com/csg33k/brq-ebookings/internal/pipeline"
	"github.com/csg33k/brq-ebookings/internal/ports"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
	"github.com/csg33k/brq-ebookings/internal/templates"
)

// maxUpload bounds an uploaded BRQ file.
const maxUpload = 32 << 20

type Handler struct {
	svc      *pipeline.Service
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

func New(svc *pipeline.Service, m *metrics.Collector, gatherer prometheus.Gatherer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, metrics: m, gatherer: gatherer, log: log}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /brq", h.ingest)
	mux.HandleFunc("GET /brq/{id}", h.document)
	mux.HandleFunc("GET /brq/{id}/view", h.viewDocument)
	mux.HandleFunc("POST /brq/{id}/campaign-header", h.campaignHeader)
	mux.HandleFunc("POST /brq/{id}/spots", h.spots)
	mux.HandleFunc("POST /brq/{id}/submit", h.submit)
	mux.HandleFunc("POST /brq/{id}/split", h.split)
	mux.HandleFunc("GET /brq/{id}/summary.pdf", h.summaryPDF)
	mux.HandleFunc("GET /artifacts/{key...}", h.artifact)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return h.instrument(mux)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Documents(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	render(w, r, templates.Index(docs))
}

// ingest accepts either a multipart upload (fields "name" and "file") or a
// raw BRQ body with the file name in the "name" query parameter.
func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	name, text, err := readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := h.svc.Ingest(r.Context(), name, text)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("HX-Redirect", fmt.Sprintf("/brq/%d/view", d.ID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            d.ID,
		"correlationId": d.CorrelationID,
		"file":          d.File,
		"validation":    d.Validation,
	})
}

func readUpload(w http.ResponseWriter, r *http.Request) (name, text string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return "", "", err
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		if err != nil {
			return "", "", err
		}
		name = r.FormValue("name")
		if name == "" {
			name = hdr.Filename
		}
		return name, string(body), nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", err
	}
	name = r.URL.Query().Get("name")
	if name == "" {
		return "", "", errors.New("missing name query parameter")
	}
	return name, string(body), nil
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	d, err := h.svc.Document(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) viewDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	ctx := r.Context()
	d, err := h.svc.Document(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	runs, err := h.svc.Runs(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	artifacts, err := h.svc.Artifacts(ctx, d.CorrelationID+"/")
	if err != nil {
		h.fail(w, err)
		return
	}
	render(w, r, templates.Detail(d, runs, artifacts))
}

type campaignHeaderRequest struct {
	CampaignCode string           `json:"campaignCode"`
	ApprovalID   int              `json:"approvalID"`
	Existing     *domain.Campaign `json:"existing,omitempty"`
}

func (h *Handler) campaignHeader(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	var req campaignHeaderRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.CampaignCode == "" {
		http.Error(w, "campaignCode is required", 400)
		return
	}
	upd, err := h.svc.CampaignHeader(r.Context(), id, pipeline.HeaderRequest{
		CampaignCode: req.CampaignCode,
		ApprovalID:   req.ApprovalID,
		Existing:     req.Existing,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

type spotsRequest struct {
	CampaignNumber int `json:"campaignNumber"`
	ApprovalID     int `json:"approvalID"`
}

type pageInfo struct {
	Key   string `json:"key"`
	Lines int    `json:"lines"`
}

func (h *Handler) spots(w http.ResponseWriter, r *http.Request) {
	id, req, ok := spotsInput(w, r)
	if !ok {
		return
	}
	pages, err := h.svc.Spots(r.Context(), id, req.CampaignNumber)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]pageInfo, len(pages))
	for i, p := range pages {
		out[i] = pageInfo{Key: p.Key, Lines: len(p.Payload.SpotPreBookingDetails)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, req, ok := spotsInput(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Submit(r.Context(), id, req.CampaignNumber, req.ApprovalID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func spotsInput(w http.ResponseWriter, r *http.Request) (int64, spotsRequest, bool) {
	var req spotsRequest
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return 0, req, false
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), 400)
		return 0, req, false
	}
	if req.CampaignNumber <= 0 {
		http.Error(w, "campaignNumber must be positive", 400)
		return 0, req, false
	}
	return id, req, true
}

// split takes an optional "threshold" query parameter (YYYY-MM-DD).
func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	var threshold time.Time
	if v := r.URL.Query().Get("threshold"); v != "" {
		threshold, err = time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid threshold", 400)
			return
		}
	}
	keys, err := h.svc.Split(r.Context(), id, threshold)
	if err != nil {
		h.fail(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"split": len(keys) > 0, "keys": keys})
}

func (h *Handler) summaryPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Summary(r.Context(), id, &buf); err != nil {
		h.fail(w, err)
		return
	}
	filename := fmt.Sprintf("BRQ_%d_%s_summary.pdf", id, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

func (h *Handler) artifact(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Artifact(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Write(a.Body)
}

// fail maps pipeline errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrRejected):
		status = http.StatusConflict
	case errors.Is(err, brq.ErrFileName):
		status = http.StatusBadRequest
	case errors.Is(err, brq.ErrFormat), errors.Is(err, salesarea.ErrNotFound):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

// ── Middleware ────────────────────────────────────────────────────────────────

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latency by matched route pattern.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		timer := h.metrics.NewTimer(nil)
		next.ServeHTTP(sw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		h.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(timer.ObserveDuration().Seconds())
		h.metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(sw.status))
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads an optional JSON body; an empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}
