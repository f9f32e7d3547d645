// Package extract turns a document identifier into bounded text
// samples. Extraction never fails upward: any error is absorbed into
// a placeholder result so the analysis pipeline always has text to
// validate against its thresholds.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Mode selects the extraction budget.
type Mode string

const (
	// ModeSample reads a few pages with a character cap, for quick previews.
	ModeSample Mode = "sample"
	// ModeFull reads up to the full page cap with no character cap.
	ModeFull Mode = "full"
)

// FallbackText is returned when a document yields no readable text.
const FallbackText = "No text could be extracted from this document."

const ellipsis = "..."

// Result is one extraction outcome. Text is never empty.
type Result struct {
	Text      string
	PagesRead int
	Truncated bool
	Mode      Mode
}

// PageStream is an open document yielding per-page text fragments.
type PageStream interface {
	PageCount() int
	// PageText returns the text fragments of page n (1-based).
	PageText(ctx context.Context, n int) ([]string, error)
	Close() error
}

// PageSource opens a document's page stream by identifier.
type PageSource interface {
	Open(ctx context.Context, docID string) (PageStream, error)
}

// Limits are the per-mode extraction budgets.
type Limits struct {
	SamplePages     int
	FullPages       int
	SampleCharLimit int
}

// Engine reads bounded text from documents.
type Engine struct {
	source PageSource
	limits Limits
	log    *slog.Logger
}

func NewEngine(source PageSource, limits Limits, log *slog.Logger) *Engine {
	return &Engine{source: source, limits: limits, log: log}
}

// Extract reads up to the mode's page budget from the document.
// It never returns an error: failures come back as a placeholder
// result so no extraction problem crosses into the orchestrator.
func (e *Engine) Extract(ctx context.Context, docID string, mode Mode) Result {
	stream, err := e.source.Open(ctx, docID)
	if err != nil {
		e.log.Warn("extraction failed, using placeholder", "doc_id", docID, "error", err)
		return Result{Text: FallbackText, Mode: mode}
	}
	defer stream.Close()

	maxPages := e.pageCap(stream.PageCount(), mode)

	var buf strings.Builder
	pagesRead := 0
	truncated := false

	// Pages are read strictly in order so the character-cap early
	// exit stays well-defined.
	for n := 1; n <= maxPages; n++ {
		if ctx.Err() != nil {
			break
		}
		fragments, err := stream.PageText(ctx, n)
		if err != nil {
			e.log.Warn("skipping unreadable page", "doc_id", docID, "page", n, "error", err)
			continue
		}
		pagesRead++
		buf.WriteString(strings.Join(fragments, " "))
		buf.WriteString("\n\n")

		// The cap counts characters, not bytes; slicing by byte
		// offset could split a multi-byte rune.
		if mode == ModeSample && utf8.RuneCountInString(buf.String()) > e.limits.SampleCharLimit {
			runes := []rune(buf.String())
			buf.Reset()
			buf.WriteString(string(runes[:e.limits.SampleCharLimit]))
			buf.WriteString(ellipsis)
			truncated = true
			break
		}
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		e.log.Warn("document yielded no text, using placeholder", "doc_id", docID)
		return Result{Text: FallbackText, PagesRead: pagesRead, Mode: mode}
	}
	return Result{Text: text, PagesRead: pagesRead, Truncated: truncated, Mode: mode}
}

func (e *Engine) pageCap(pageCount int, mode Mode) int {
	limit := e.limits.FullPages
	if mode == ModeSample {
		limit = e.limits.SamplePages
	}
	if pageCount < limit {
		return pageCount
	}
	return limit
}
