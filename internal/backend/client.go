// Package backend is the HTTP client for the document-intelligence
// backend. The backend owns uploads, indexing, and the AI analysis
// endpoints; this client only speaks its wire contract and leaves all
// fallback policy to the callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client communicates with the document-intelligence backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Document is one entry from the backend listing.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	PageCount   int    `json:"page_count"`
	ProcessedAt string `json:"processed_at"`
}

// InsightPayload mirrors the insights object of the backend response.
// Any field may be absent or empty; callers apply placeholders.
type InsightPayload struct {
	KeyInsights   []string `json:"key_insights"`
	DidYouKnow    []string `json:"did_you_know"`
	Counterpoints []string `json:"counterpoints"`
	Connections   []string `json:"connections"`
}

// RelatedPayload is one related-section hit. Score and page are
// optional on the wire; the page may arrive at the top level or
// nested under meta.
type RelatedPayload struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score"`
	Page  *int     `json:"page"`
	Meta  struct {
		Page *int `json:"page"`
	} `json:"meta"`
}

// PageNumber returns the page from whichever field carried it.
func (r RelatedPayload) PageNumber() *int {
	if r.Page != nil {
		return r.Page
	}
	return r.Meta.Page
}

// PodcastPayload is the podcast response. Both fields are optional.
type PodcastPayload struct {
	Script      *string `json:"script"`
	TextContent *string `json:"text_content"`
}

// RequestError is a transport failure or non-success status from the
// backend. Status is zero when the request never got a response.
type RequestError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ListDocuments fetches the full document listing.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/documents", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "list documents", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError("list documents", resp)
	}

	var result struct {
		Documents []Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return result.Documents, nil
}

// FetchPDF downloads the raw PDF bytes for a document.
func (c *Client) FetchPDF(ctx context.Context, docID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/pdf/"+url.PathEscape(docID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "fetch pdf", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError("fetch pdf", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pdf body: %w", err)
	}
	return data, nil
}

// RequestInsights asks the backend for an insight bundle over the
// given text. Absent fields in the response stay nil.
func (c *Client) RequestInsights(ctx context.Context, docID, text string) (InsightPayload, error) {
	var envelope struct {
		Insights InsightPayload `json:"insights"`
	}
	err := c.postForm(ctx, "request insights", "/api/insights/"+url.PathEscape(docID), text, &envelope)
	return envelope.Insights, err
}

// RequestRelated searches the document for sections related to text,
// returning at most count hits.
func (c *Client) RequestRelated(ctx context.Context, docID, text string, count int) ([]RelatedPayload, error) {
	q := url.Values{}
	q.Set("doc_id", docID)
	q.Set("text", text)
	q.Set("k", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/related?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "request related", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError("request related", resp)
	}

	var sections []RelatedPayload
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return nil, fmt.Errorf("decode related sections: %w", err)
	}
	return sections, nil
}

// RequestPodcast asks the backend for a narration script over the
// given text.
func (c *Client) RequestPodcast(ctx context.Context, docID, text string) (PodcastPayload, error) {
	var payload PodcastPayload
	err := c.postForm(ctx, "request podcast", "/api/podcast/"+url.PathEscape(docID), text, &payload)
	return payload, err
}

// DeleteDocument removes a document on the backend.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/documents/"+url.PathEscape(docID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: "delete document", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return readStatusError("delete document", resp)
	}
	return nil
}

// UploadFile is one file of a bulk upload.
type UploadFile struct {
	Name string
	Data io.Reader
}

// BulkUpload posts files as multipart form data and reports how many
// the backend accepted.
func (c *Client) BulkUpload(ctx context.Context, files []UploadFile) (int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return 0, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Data); err != nil {
			return 0, fmt.Errorf("write form file %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload/bulk", &buf)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &RequestError{Op: "bulk upload", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, readStatusError("bulk upload", resp)
	}

	var result struct {
		Uploaded int `json:"uploaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode upload result: %w", err)
	}
	return result.Uploaded, nil
}

// postForm posts the extracted text as the section_text form field and
// decodes the JSON response into out.
func (c *Client) postForm(ctx context.Context, op, path, text string, out any) error {
	form := url.Values{}
	form.Set("section_text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readStatusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func readStatusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &RequestError{Op: op, Status: resp.StatusCode, Body: string(body)}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
