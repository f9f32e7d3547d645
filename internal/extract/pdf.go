package extract

import (
	"bytes"
	"context"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// ByteFetcher retrieves a document's raw PDF bytes.
type ByteFetcher interface {
	FetchPDF(ctx context.Context, docID string) ([]byte, error)
}

// PDFSource opens page streams over PDFs fetched from the backend.
type PDFSource struct {
	fetcher ByteFetcher
}

func NewPDFSource(fetcher ByteFetcher) *PDFSource {
	return &PDFSource{fetcher: fetcher}
}

func (s *PDFSource) Open(ctx context.Context, docID string) (PageStream, error) {
	data, err := s.fetcher.FetchPDF(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfStream{reader: reader}, nil
}

type pdfStream struct {
	reader *pdflib.Reader
}

func (p *pdfStream) PageCount() int {
	return p.reader.NumPage()
}

func (p *pdfStream) PageText(ctx context.Context, n int) (fragments []string, err error) {
	// The pdf library panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page %d: %v", n, r)
		}
	}()

	page := p.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}
	for _, t := range page.Content().Text {
		if t.S != "" {
			fragments = append(fragments, t.S)
		}
	}
	return fragments, nil
}

func (p *pdfStream) Close() error {
	return nil
}
