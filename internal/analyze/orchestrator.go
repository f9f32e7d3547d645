// Package analyze sequences the extraction-and-analysis pipeline:
// validate extracted text against the operation's threshold, dispatch
// the backend requests in order, and merge results with the fallback
// policy so presentation never sees a missing field.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docsense/docsense/internal/backend"
	"github.com/docsense/docsense/internal/config"
	"github.com/docsense/docsense/internal/extract"
	"github.com/docsense/docsense/internal/session"
)

// InsightBundle is the merged insight display model. All four fields
// are always present; content may be a fallback placeholder.
type InsightBundle struct {
	KeyInsights   []string `json:"key_insights"`
	DidYouKnow    []string `json:"did_you_know"`
	Counterpoints []string `json:"counterpoints"`
	Connections   []string `json:"connections"`
}

// RelatedSection is one related-section hit. Page and Score stay nil
// when the backend omitted them; rendering substitutes sentinels.
type RelatedSection struct {
	Text  string   `json:"text"`
	Page  *int     `json:"page,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Analysis is the display model for one analyze operation.
type Analysis struct {
	OperationID string           `json:"operation_id"`
	Insights    InsightBundle    `json:"insights"`
	Related     []RelatedSection `json:"related,omitempty"`
	PagesRead   int              `json:"pages_read"`
	Truncated   bool             `json:"truncated"`
	// Warning is set when a dependent request failed after the
	// primary one succeeded; the result is still usable.
	Warning string `json:"warning,omitempty"`
}

// Podcast is a resolved narration script.
type Podcast struct {
	OperationID string `json:"operation_id"`
	Content     string `json:"content"`
}

// Extractor produces bounded text for a document.
type Extractor interface {
	Extract(ctx context.Context, docID string, mode extract.Mode) extract.Result
}

// Backend is the subset of the backend client the orchestrator needs.
type Backend interface {
	RequestInsights(ctx context.Context, docID, text string) (backend.InsightPayload, error)
	RequestRelated(ctx context.Context, docID, text string, count int) ([]backend.RelatedPayload, error)
	RequestPodcast(ctx context.Context, docID, text string) (backend.PodcastPayload, error)
}

// Orchestrator drives the quick-analysis, full-analysis, and podcast
// pipelines. Operations on different documents may run concurrently;
// within one operation all steps are strictly sequential.
type Orchestrator struct {
	extractor Extractor
	backend   Backend
	session   *session.Session
	cfg       config.AnalysisConfig
	log       *slog.Logger
}

func NewOrchestrator(extractor Extractor, b Backend, sess *session.Session, cfg config.AnalysisConfig, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		backend:   b,
		session:   sess,
		cfg:       cfg,
		log:       log,
	}
}

// QuickAnalyze extracts a sample and requests insights only. The
// sample threshold is the loosest: a quick preview needs just enough
// text to be representative.
func (o *Orchestrator) QuickAnalyze(ctx context.Context, docID string) (*Analysis, error) {
	opID := uuid.NewString()
	log := o.log.With("op", "quick_analyze", "op_id", opID, "doc_id", docID)

	res := o.extractor.Extract(ctx, docID, extract.ModeSample)
	// Thresholds count characters, matching the extraction budgets.
	if n := utf8.RuneCountInString(res.Text); n < o.cfg.QuickMinChars {
		return nil, &InsufficientTextError{Op: "quick analysis", Length: n, Min: o.cfg.QuickMinChars}
	}

	payload, err := o.backend.RequestInsights(ctx, docID, res.Text)
	if err != nil {
		return nil, fmt.Errorf("insight request: %w", err)
	}
	log.Info("quick analysis complete", "pages_read", res.PagesRead, "truncated", res.Truncated)

	return &Analysis{
		OperationID: opID,
		Insights:    bundleFrom(payload),
		PagesRead:   res.PagesRead,
		Truncated:   res.Truncated,
	}, nil
}

// FullAnalyze extracts the full budget, requests insights, and then
// a dependent related-sections search over the same text. A failed
// related request degrades to a warning on an otherwise successful
// result; the insight half is still delivered.
func (o *Orchestrator) FullAnalyze(ctx context.Context, docID string) (*Analysis, error) {
	opID := uuid.NewString()
	log := o.log.With("op", "full_analyze", "op_id", opID, "doc_id", docID)

	res := o.extractor.Extract(ctx, docID, extract.ModeFull)
	if n := utf8.RuneCountInString(res.Text); n < o.cfg.FullMinChars {
		return nil, &InsufficientTextError{Op: "full analysis", Length: n, Min: o.cfg.FullMinChars}
	}

	payload, err := o.backend.RequestInsights(ctx, docID, res.Text)
	if err != nil {
		return nil, fmt.Errorf("insight request: %w", err)
	}

	analysis := &Analysis{
		OperationID: opID,
		Insights:    bundleFrom(payload),
		PagesRead:   res.PagesRead,
		Truncated:   res.Truncated,
	}

	// The related search only runs once insights succeeded; its
	// failure must not take the insight result down with it.
	related, err := o.backend.RequestRelated(ctx, docID, res.Text, o.cfg.RelatedCount)
	if err != nil {
		log.Warn("related sections unavailable", "error", err)
		analysis.Warning = "related sections unavailable"
		return analysis, nil
	}
	analysis.Related = relatedFrom(related)

	log.Info("full analysis complete", "pages_read", res.PagesRead, "related", len(analysis.Related))
	return analysis, nil
}

// GeneratePodcast extracts the full budget and requests a narration
// script, resolving it through the script/text_content/extracted-text
// fallback chain. The podcast threshold is the strictest: narration
// needs enough substance to be worth synthesizing.
func (o *Orchestrator) GeneratePodcast(ctx context.Context, docID string) (*Podcast, error) {
	opID := uuid.NewString()
	log := o.log.With("op", "generate_podcast", "op_id", opID, "doc_id", docID)

	res := o.extractor.Extract(ctx, docID, extract.ModeFull)
	if n := utf8.RuneCountInString(res.Text); n < o.cfg.PodcastMinChars {
		return nil, &InsufficientTextError{Op: "podcast generation", Length: n, Min: o.cfg.PodcastMinChars}
	}

	payload, err := o.backend.RequestPodcast(ctx, docID, res.Text)
	if err != nil {
		return nil, fmt.Errorf("podcast request: %w", err)
	}

	content := resolveScript(payload, res.Text)
	o.session.RecordPodcast(content)
	log.Info("podcast script generated", "chars", len(content))

	return &Podcast{OperationID: opID, Content: content}, nil
}
