package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubStream serves canned per-page fragments and records which
// pages were read.
type stubStream struct {
	pages     [][]string
	pageErrs  map[int]error
	readPages []int
}

func (s *stubStream) PageCount() int { return len(s.pages) }

func (s *stubStream) PageText(ctx context.Context, n int) ([]string, error) {
	s.readPages = append(s.readPages, n)
	if err := s.pageErrs[n]; err != nil {
		return nil, err
	}
	return s.pages[n-1], nil
}

func (s *stubStream) Close() error { return nil }

type stubSource struct {
	stream  *stubStream
	openErr error
}

func (s *stubSource) Open(ctx context.Context, docID string) (PageStream, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.stream, nil
}

func testLimits() Limits {
	return Limits{SamplePages: 3, FullPages: 10, SampleCharLimit: 1000}
}

func newTestEngine(src PageSource) *Engine {
	return NewEngine(src, testLimits(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func repeatPages(n int, fragments ...string) [][]string {
	pages := make([][]string, n)
	for i := range pages {
		pages[i] = fragments
	}
	return pages
}

func TestExtract_SampleReadsAtMostThreePages(t *testing.T) {
	stream := &stubStream{pages: repeatPages(8, "short", "text")}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeSample)

	if res.PagesRead != 3 {
		t.Errorf("expected 3 pages read, got %d", res.PagesRead)
	}
	if len(stream.readPages) != 3 {
		t.Errorf("expected 3 page reads, got %v", stream.readPages)
	}
	if res.Mode != ModeSample {
		t.Errorf("expected sample mode, got %q", res.Mode)
	}
}

func TestExtract_FullReadsAtMostTenPages(t *testing.T) {
	stream := &stubStream{pages: repeatPages(25, "page", "content")}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	if res.PagesRead != 10 {
		t.Errorf("expected 10 pages read, got %d", res.PagesRead)
	}
	if res.Truncated {
		t.Error("full mode must never set the truncated flag")
	}
}

func TestExtract_PageCapBoundedByPageCount(t *testing.T) {
	stream := &stubStream{pages: repeatPages(2, "only", "two", "pages")}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	if res.PagesRead != 2 {
		t.Errorf("expected 2 pages read, got %d", res.PagesRead)
	}
}

func TestExtract_SampleTruncatesAtCharLimit(t *testing.T) {
	// Each page is 600 chars, so the cap is crossed during page 2.
	page := []string{strings.Repeat("a", 600)}
	stream := &stubStream{pages: repeatPages(3, page...)}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeSample)

	if !res.Truncated {
		t.Fatal("expected truncated result")
	}
	if len(res.Text) > 1000+len("...") {
		t.Errorf("expected at most %d chars, got %d", 1000+len("..."), len(res.Text))
	}
	if !strings.HasSuffix(res.Text, "...") {
		t.Errorf("expected ellipsis suffix, got %q", res.Text[len(res.Text)-10:])
	}
	// Once the threshold is crossed no further pages are read.
	if len(stream.readPages) != 2 {
		t.Errorf("expected reading to stop after page 2, read %v", stream.readPages)
	}
	if res.PagesRead != 2 {
		t.Errorf("expected 2 pages read, got %d", res.PagesRead)
	}
}

func TestExtract_SampleTruncationIsRuneAware(t *testing.T) {
	// Two-byte runes: the byte count crosses the cap well before the
	// character count does, and a byte-offset cut would split a rune.
	page := []string{strings.Repeat("é", 600)}
	stream := &stubStream{pages: repeatPages(3, page...)}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeSample)

	if !res.Truncated {
		t.Fatal("expected truncated result")
	}
	if !utf8.ValidString(res.Text) {
		t.Fatal("truncated text must remain valid UTF-8")
	}
	if got := utf8.RuneCountInString(res.Text); got != 1000+len("...") {
		t.Errorf("expected %d runes, got %d", 1000+len("..."), got)
	}
	if !strings.HasSuffix(res.Text, "é...") {
		t.Error("expected the cut to land on a rune boundary before the ellipsis")
	}
}

func TestExtract_FullModeHasNoCharLimit(t *testing.T) {
	page := []string{strings.Repeat("b", 900)}
	stream := &stubStream{pages: repeatPages(4, page...)}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	if res.Truncated {
		t.Error("full mode must not truncate by character count")
	}
	if len(res.Text) < 3600 {
		t.Errorf("expected all four pages of text, got %d chars", len(res.Text))
	}
}

func TestExtract_JoinsFragmentsAndPages(t *testing.T) {
	stream := &stubStream{pages: [][]string{
		{"Hello", "world"},
		{"Second", "page"},
	}}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	want := "Hello world\n\nSecond page"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
}

func TestExtract_OpenFailureYieldsPlaceholder(t *testing.T) {
	engine := newTestEngine(&stubSource{openErr: errors.New("corrupt pdf")})

	res := engine.Extract(context.Background(), "doc-1", ModeSample)

	if res.Text != FallbackText {
		t.Errorf("expected placeholder text, got %q", res.Text)
	}
	if res.Truncated {
		t.Error("placeholder result must not be truncated")
	}
	if res.PagesRead != 0 {
		t.Errorf("expected 0 pages read, got %d", res.PagesRead)
	}
}

func TestExtract_EmptyDocumentYieldsPlaceholder(t *testing.T) {
	stream := &stubStream{pages: repeatPages(3)}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	if res.Text != FallbackText {
		t.Errorf("expected placeholder text, got %q", res.Text)
	}
}

func TestExtract_UnreadablePageIsSkipped(t *testing.T) {
	stream := &stubStream{
		pages:    repeatPages(3, "readable"),
		pageErrs: map[int]error{2: errors.New("bad xref")},
	}
	engine := newTestEngine(&stubSource{stream: stream})

	res := engine.Extract(context.Background(), "doc-1", ModeFull)

	if res.PagesRead != 2 {
		t.Errorf("expected 2 pages read, got %d", res.PagesRead)
	}
	if res.Text != "readable\n\nreadable" {
		t.Errorf("unexpected text %q", res.Text)
	}
}
