// Package render maps analysis results onto presentation values:
// bounded previews, sentinel strings for absent fields, and an HTML
// fragment of the full analysis for the viewer.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"github.com/docsense/docsense/internal/analyze"
)

const (
	previewLimit = 100

	pageSentinel  = "N/A"
	scoreSentinel = "0.00"
)

// RelatedView is one related section ready for display.
type RelatedView struct {
	Preview string `json:"preview"`
	Page    string `json:"page"`
	Score   string `json:"score"`
}

// Preview bounds section text for display: the first 100 characters
// followed by an ellipsis marker, whatever the section's length.
// The bound is in runes so a multi-byte character is never split.
func Preview(text string) string {
	if utf8.RuneCountInString(text) > previewLimit {
		text = string([]rune(text)[:previewLimit])
	}
	return text + "..."
}

// RelatedViews renders related sections with sentinel values for any
// field the backend omitted.
func RelatedViews(sections []analyze.RelatedSection) []RelatedView {
	views := make([]RelatedView, 0, len(sections))
	for _, s := range sections {
		page := pageSentinel
		if s.Page != nil {
			page = strconv.Itoa(*s.Page)
		}
		score := scoreSentinel
		if s.Score != nil {
			score = fmt.Sprintf("%.2f", *s.Score)
		}
		views = append(views, RelatedView{
			Preview: Preview(s.Text),
			Page:    page,
			Score:   score,
		})
	}
	return views
}

// AnalysisHTML renders the analysis as an HTML fragment for the
// document viewer panel.
func AnalysisHTML(a *analyze.Analysis) (string, error) {
	var md strings.Builder

	writeSection := func(title string, items []string) {
		md.WriteString("## " + title + "\n\n")
		for _, item := range items {
			md.WriteString("- " + item + "\n")
		}
		md.WriteString("\n")
	}

	writeSection("Key Insights", a.Insights.KeyInsights)
	writeSection("Did You Know", a.Insights.DidYouKnow)
	writeSection("Counterpoints", a.Insights.Counterpoints)
	writeSection("Connections", a.Insights.Connections)

	if len(a.Related) > 0 {
		md.WriteString("## Related Sections\n\n")
		for _, v := range RelatedViews(a.Related) {
			md.WriteString(fmt.Sprintf("- %s (page %s, score %s)\n", v.Preview, v.Page, v.Score))
		}
		md.WriteString("\n")
	}
	if a.Warning != "" {
		md.WriteString("> " + a.Warning + "\n")
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", fmt.Errorf("render analysis: %w", err)
	}
	return buf.String(), nil
}
