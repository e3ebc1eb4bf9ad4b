// Package pipeline runs BRQ documents through ingestion, campaign header
// aggregation, spot payload building and downstream submission. Every stage
// is recorded as a run against the stored document and every log line
// carries the document's correlation id.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/adapters/pdf"
	"github.com/csg33k/brq-ebookings/internal/campaign"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/gateway"
	"github.com/csg33k/brq-ebookings/internal/metrics"
	"github.com/csg33k/brq-ebookings/internal/ports"
	"github.com/csg33k/brq-ebookings/internal/report"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
	"github.com/csg33k/brq-ebookings/internal/spots"
	"github.com/csg33k/brq-ebookings/internal/validation"
)

// ErrRejected is returned by downstream stages for a document that failed
// validation at ingestion.
var ErrRejected = errors.New("pipeline: document failed validation")

const (
	contentJSON = "application/json"
	contentCSV  = "text/csv"
	contentBRQ  = "text/plain"
)

// Settings are the plain values the stages are parameterised by.
type Settings struct {
	DaypartID      string
	ChunkLimit     int
	Validation     validation.Settings
	// SplitThreshold is used by Split when the caller passes the zero time.
	SplitThreshold time.Time
	Now            func() time.Time
}

type Service struct {
	repo      ports.DocumentRepository
	artifacts ports.ArtifactStore
	areas     ports.SalesAreaSource
	gw        ports.Gateway
	metrics   *metrics.Collector
	settings  Settings
	log       *slog.Logger
}

// New wires a Service. A nil collector registers on a private registry; a
// nil logger uses slog.Default().
func New(
	repo ports.DocumentRepository,
	artifacts ports.ArtifactStore,
	areas ports.SalesAreaSource,
	gw ports.Gateway,
	m *metrics.Collector,
	settings Settings,
	log *slog.Logger,
) *Service {
	if m == nil {
		m = metrics.NewCollector("brq", prometheus.NewRegistry())
	}
	if log == nil {
		log = slog.Default()
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.Validation.Now == nil {
		settings.Validation.Now = settings.Now
	}
	return &Service{
		repo:      repo,
		artifacts: artifacts,
		areas:     areas,
		gw:        gw,
		metrics:   m,
		settings:  settings,
		log:       log,
	}
}

// ── Ingest ────────────────────────────────────────────────────────────────────

// Ingest parses text uploaded as name, validates it and stores the
// document and its JSON artifact "<cid>/brq.json". A document that fails
// validation is still stored and returned; its Validation says why.
// Only an unusable file name, a format error or a storage failure is an
// error.
func (s *Service) Ingest(ctx context.Context, name, text string) (*domain.StoredDocument, error) {
	cid := uuid.NewString()
	log := s.log.With("correlation_id", cid, "file", name)
	timer := s.metrics.StageTimer(domain.StageIngest)
	defer timer.ObserveDuration()

	file, err := brq.ResolveFileName(name, false)
	if err != nil {
		s.metrics.RecordStageError(domain.StageIngest)
		return nil, err
	}

	doc, err := brq.Parse(text)
	s.metrics.RecordParse(detailCount(doc), conversionKinds(doc), err)
	if err != nil {
		s.metrics.RecordStageError(domain.StageIngest)
		log.Error("parse failed", "err", err)
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	for _, f := range doc.Diagnostics {
		log.Warn("field conversion suppressed", "line", f.Line, "field", f.Field, "kind", f.Kind, "raw", f.Raw)
	}

	ix, err := s.index(ctx)
	if err != nil {
		s.metrics.RecordStageError(domain.StageIngest)
		return nil, err
	}
	engine := validation.NewEngine(log, validation.Default(ix, s.settings.Validation)...)
	result := engine.Run(doc)

	stored := &domain.StoredDocument{
		CorrelationID: cid,
		File:          file,
		Document:      *doc,
		Validation:    result,
	}
	if err := s.repo.SaveDocument(ctx, stored); err != nil {
		s.metrics.RecordStageError(domain.StageIngest)
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.putJSON(ctx, cid+"/brq.json", doc); err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageIngest, err)
	}

	status, detail := domain.RunOK, fmt.Sprintf("%d details", len(doc.Details))
	if result.Failed() {
		rule, msg := failedRule(result)
		s.metrics.RecordValidationFailure(rule)
		status, detail = domain.RunFailed, msg
		log.Warn("validation failed", "rule", rule)
		s.notify(ctx, log, stored, domain.StageIngest, msg)
	}
	s.saveRun(ctx, log, stored, domain.StageIngest, status, detail)
	log.Info("document ingested", "id", stored.ID, "details", len(doc.Details), "result", result.Result)
	return stored, nil
}

func failedRule(v domain.ValidationResult) (rule, msg string) {
	for _, d := range v.Details {
		if d.Result == domain.RuleError {
			return d.RuleName, d.Msg
		}
	}
	return "", ""
}

func detailCount(doc *domain.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Details)
}

func conversionKinds(doc *domain.Document) []string {
	if doc == nil {
		return nil
	}
	kinds := make([]string, len(doc.Diagnostics))
	for i, f := range doc.Diagnostics {
		kinds[i] = f.Kind
	}
	return kinds
}

// ── Campaign header ───────────────────────────────────────────────────────────

// HeaderRequest selects the campaign a header is merged into.
type HeaderRequest struct {
	CampaignCode string
	ApprovalID   int
	// Existing is the current downstream campaign. When nil it is fetched
	// through the gateway.
	Existing *domain.Campaign
}

// CampaignHeader aggregates the document's details, merges the result into
// the existing campaign and forwards the update request downstream. The
// request is stored as "<cid>/campaign_header_payload.json".
func (s *Service) CampaignHeader(ctx context.Context, docID int64, req HeaderRequest) (*domain.CampaignUpdateRequest, error) {
	stored, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	log := s.log.With("correlation_id", stored.CorrelationID)
	timer := s.metrics.StageTimer(domain.StageCampaignHeader)
	defer timer.ObserveDuration()

	ix, err := s.index(ctx)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
	}
	h, err := campaign.New(ix, s.settings.DaypartID, log).Aggregate(stored.Document.Details)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
	}

	existing := req.Existing
	if existing == nil {
		existing, err = s.fetchCampaign(ctx, req.CampaignCode)
		if err != nil {
			return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
		}
	}
	upd := campaign.UpdateRequest(campaign.Merge(*existing, h, req.CampaignCode), req.ApprovalID)

	body, err := json.Marshal(upd)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
	}
	if err := s.artifacts.PutArtifact(ctx, stored.CorrelationID+"/campaign_header_payload.json", contentJSON, body); err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
	}
	if _, err := s.gw.Invoke(ctx, gateway.OpUpdateCampaign, body); err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageCampaignHeader, err)
	}

	s.saveRun(ctx, log, stored, domain.StageCampaignHeader, domain.RunOK,
		fmt.Sprintf("%d parent sales areas", len(h.Areas)))
	log.Info("campaign header sent", "campaign_code", req.CampaignCode, "parents", len(h.Areas))
	return &upd, nil
}

func (s *Service) fetchCampaign(ctx context.Context, code string) (*domain.Campaign, error) {
	q, err := json.Marshal(map[string]string{"campaignCode": code})
	if err != nil {
		return nil, err
	}
	raw, err := s.gw.Invoke(ctx, gateway.OpFetchCampaign, q)
	if err != nil {
		return nil, fmt.Errorf("fetch campaign %s: %w", code, err)
	}
	var c domain.Campaign
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode campaign %s: %w", code, err)
	}
	return &c, nil
}

// ── Spots ─────────────────────────────────────────────────────────────────────

// Spots builds the booking lines for campaignNumber and stores them as one
// or more pages (see spots.Paginate).
func (s *Service) Spots(ctx context.Context, docID int64, campaignNumber int) ([]spots.Page, error) {
	stored, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.spots(ctx, stored, campaignNumber)
}

func (s *Service) spots(ctx context.Context, stored *domain.StoredDocument, campaignNumber int) ([]spots.Page, error) {
	log := s.log.With("correlation_id", stored.CorrelationID)
	timer := s.metrics.StageTimer(domain.StageSpots)
	defer timer.ObserveDuration()

	ix, err := s.index(ctx)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageSpots, err)
	}
	b := spots.NewBuilder(ix, spots.WithClock(s.settings.Now), spots.WithLogger(log))
	payload, err := b.Build(stored.Document.Details, campaignNumber)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageSpots, err)
	}

	pages := spots.Paginate(stored.CorrelationID, payload, s.settings.ChunkLimit)
	for _, p := range pages {
		if err := s.putJSON(ctx, p.Key, &p.Payload); err != nil {
			return nil, s.fail(ctx, log, stored, domain.StageSpots, err)
		}
	}
	lines := len(payload.SpotPreBookingDetails)
	s.metrics.RecordSpots(lines, len(pages))
	s.saveRun(ctx, log, stored, domain.StageSpots, domain.RunOK,
		fmt.Sprintf("%d lines in %d pages", lines, len(pages)))
	log.Info("spot payload stored", "lines", lines, "pages", len(pages), "tranched", spots.Tranched(pages))
	return pages, nil
}

// ── Submit ────────────────────────────────────────────────────────────────────

// PageOutcome is the downstream verdict on one submitted page.
type PageOutcome struct {
	Key       string
	Overall   domain.OverallStatus
	Failures  int
	ReportKey string
}

type SubmitResult struct {
	Overall domain.OverallStatus
	Pages   []PageOutcome
	Rows    []domain.ReportRow
}

// Submit builds and stores the spot pages, sends each downstream and turns
// the responses into failure reports. A page with failures gets a CSV
// report under "<cid>/reports/"; all failure rows are also kept as
// "<cid>/reports/failures.json" for the summary PDF.
func (s *Service) Submit(ctx context.Context, docID int64, campaignNumber, approvalID int) (*SubmitResult, error) {
	stored, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	pages, err := s.spots(ctx, stored, campaignNumber)
	if err != nil {
		return nil, err
	}

	log := s.log.With("correlation_id", stored.CorrelationID)
	timer := s.metrics.StageTimer(domain.StageSubmit)
	defer timer.ObserveDuration()

	res := &SubmitResult{}
	statuses := make([]domain.OverallStatus, 0, len(pages))
	for i := range pages {
		out, rows, err := s.submitPage(ctx, stored, &pages[i], approvalID, i+1)
		if err != nil {
			return nil, s.fail(ctx, log, stored, domain.StageSubmit, fmt.Errorf("page %s: %w", pages[i].Key, err))
		}
		s.metrics.RecordSubmitOutcome(string(out.Overall))
		statuses = append(statuses, out.Overall)
		res.Pages = append(res.Pages, out)
		res.Rows = append(res.Rows, rows...)
	}
	res.Overall = combine(statuses)

	if len(res.Rows) > 0 {
		if err := s.putJSON(ctx, stored.CorrelationID+"/reports/failures.json", res.Rows); err != nil {
			return nil, s.fail(ctx, log, stored, domain.StageSubmit, err)
		}
	}
	if res.Overall != domain.StatusYes {
		s.notify(ctx, log, stored, domain.StageSubmit,
			fmt.Sprintf("%d spot lines were rejected", len(res.Rows)))
	}
	s.saveRun(ctx, log, stored, domain.StageSubmit, domain.RunOK, "overall "+string(res.Overall))
	log.Info("spots submitted", "pages", len(pages), "overall", res.Overall, "failures", len(res.Rows))
	return res, nil
}

func (s *Service) submitPage(ctx context.Context, stored *domain.StoredDocument, page *spots.Page, approvalID, n int) (PageOutcome, []domain.ReportRow, error) {
	out := PageOutcome{Key: page.Key}
	body, err := json.Marshal(&page.Payload)
	if err != nil {
		return out, nil, err
	}
	raw, err := s.gw.Invoke(ctx, gateway.OpSubmitSpots, body)
	if err != nil {
		return out, nil, err
	}
	resp, err := report.ParseResponse(raw)
	if err != nil {
		return out, nil, err
	}
	pr, err := report.Build(&stored.Document, &page.Payload, resp)
	if err != nil {
		return out, nil, err
	}
	out.Overall = pr.Overall
	out.Failures = len(pr.Rows)
	if len(pr.Rows) == 0 {
		return out, nil, nil
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, pr.Rows); err != nil {
		return out, nil, err
	}
	name := report.FileName(stored.File.RequestID, approvalID, s.settings.Now(), n)
	out.ReportKey = stored.CorrelationID + "/reports/" + name
	if err := s.artifacts.PutArtifact(ctx, out.ReportKey, contentCSV, buf.Bytes()); err != nil {
		return out, nil, err
	}
	return out, pr.Rows, nil
}

// combine folds page verdicts: Yes only when every page is Yes, No only
// when every page is No.
func combine(statuses []domain.OverallStatus) domain.OverallStatus {
	yes, no := 0, 0
	for _, st := range statuses {
		switch st {
		case domain.StatusYes:
			yes++
		case domain.StatusNo:
			no++
		}
	}
	switch {
	case yes == len(statuses):
		return domain.StatusYes
	case no == len(statuses):
		return domain.StatusNo
	default:
		return domain.StatusPartial
	}
}

// ── Split ─────────────────────────────────────────────────────────────────────

// Split re-encodes the document as two BRQ files either side of threshold
// and stores them under "<cid>/split/". The zero threshold means the
// configured SplitThreshold, or failing that the last Saturday of the
// current year. It returns the stored keys, or none when
// every detail falls on one side.
func (s *Service) Split(ctx context.Context, docID int64, threshold time.Time) ([]string, error) {
	stored, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	log := s.log.With("correlation_id", stored.CorrelationID)
	if threshold.IsZero() {
		threshold = s.settings.SplitThreshold
	}
	if threshold.IsZero() {
		threshold = brq.LastSaturdayOfYear(s.settings.Now().Year())
	}

	before, after, split, err := brq.SplitAtThreshold(&stored.Document, threshold)
	if err != nil {
		return nil, s.fail(ctx, log, stored, domain.StageSplit, err)
	}
	if !split {
		s.saveRun(ctx, log, stored, domain.StageSplit, domain.RunOK, "not split")
		return nil, nil
	}

	keys := make([]string, 0, 2)
	for i, child := range []*domain.Document{before, after} {
		key := stored.CorrelationID + "/split/" + brq.SplitFileName(stored.File.Name, i+1)
		if err := s.artifacts.PutArtifact(ctx, key, contentBRQ, []byte(brq.Encode(child))); err != nil {
			return nil, s.fail(ctx, log, stored, domain.StageSplit, err)
		}
		keys = append(keys, key)
	}
	s.saveRun(ctx, log, stored, domain.StageSplit, domain.RunOK,
		fmt.Sprintf("split at %s", threshold.Format("2006-01-02")))
	log.Info("document split", "threshold", threshold.Format("2006-01-02"),
		"before", len(before.Details), "after", len(after.Details))
	return keys, nil
}

// ── Summary ───────────────────────────────────────────────────────────────────

// Summary renders the campaign summary PDF, including the failure rows of
// the latest submission when there was one.
func (s *Service) Summary(ctx context.Context, docID int64, w io.Writer) error {
	stored, err := s.load(ctx, docID)
	if err != nil {
		return err
	}
	ix, err := s.index(ctx)
	if err != nil {
		return err
	}
	log := s.log.With("correlation_id", stored.CorrelationID)
	h, err := campaign.New(ix, s.settings.DaypartID, log).Aggregate(stored.Document.Details)
	if err != nil {
		return err
	}

	var failures []domain.ReportRow
	a, err := s.artifacts.GetArtifact(ctx, stored.CorrelationID+"/reports/failures.json")
	switch {
	case errors.Is(err, ports.ErrNotFound):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(a.Body, &failures); err != nil {
			return fmt.Errorf("decode failures: %w", err)
		}
	}
	return pdf.GenerateSummary(w, &stored.Document, h, failures)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *Service) Documents(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.repo.ListDocuments(ctx)
}

func (s *Service) Document(ctx context.Context, id int64) (*domain.StoredDocument, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) Runs(ctx context.Context, id int64) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, id)
}

func (s *Service) Artifacts(ctx context.Context, prefix string) ([]domain.Artifact, error) {
	return s.artifacts.ListArtifacts(ctx, prefix)
}

func (s *Service) Artifact(ctx context.Context, key string) (*domain.Artifact, error) {
	return s.artifacts.GetArtifact(ctx, key)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// load fetches a document that passed validation.
func (s *Service) load(ctx context.Context, id int64) (*domain.StoredDocument, error) {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Validation.Failed() {
		return nil, fmt.Errorf("document %d: %w", id, ErrRejected)
	}
	return d, nil
}

// index builds a fresh sales-area index from the current reference rows.
func (s *Service) index(ctx context.Context) (*salesarea.Index, error) {
	rows, err := s.areas.SalesAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales areas: %w", err)
	}
	return salesarea.Build(rows), nil
}

func (s *Service) putJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.artifacts.PutArtifact(ctx, key, contentJSON, body)
}

// fail records a failed run for stage and returns err.
func (s *Service) fail(ctx context.Context, log *slog.Logger, d *domain.StoredDocument, stage string, err error) error {
	s.metrics.RecordStageError(stage)
	log.Error("stage failed", "stage", stage, "err", err)
	s.saveRun(ctx, log, d, stage, domain.RunFailed, err.Error())
	return err
}

func (s *Service) saveRun(ctx context.Context, log *slog.Logger, d *domain.StoredDocument, stage, status, detail string) {
	err := s.repo.SaveRun(ctx, &domain.Run{
		DocumentID:    d.ID,
		CorrelationID: d.CorrelationID,
		Stage:         stage,
		Status:        status,
		Detail:        detail,
	})
	if err != nil {
		log.Error("failed to record run", "stage", stage, "err", err)
	}
}

// notify tells the downstream adaptor a stage needs human attention.
// Delivery failures are logged only.
func (s *Service) notify(ctx context.Context, log *slog.Logger, d *domain.StoredDocument, stage, reason string) {
	body, err := json.Marshal(map[string]string{
		"correlationId": d.CorrelationID,
		"brqRequestID":  d.File.RequestID,
		"fromEmail":     d.File.FromEmail,
		"stage":         stage,
		"reason":        reason,
	})
	if err == nil {
		_, err = s.gw.Invoke(ctx, gateway.OpNotifyFailure, body)
	}
	if err != nil {
		log.Warn("failure notification not delivered", "stage", stage, "err", err)
	}
}
