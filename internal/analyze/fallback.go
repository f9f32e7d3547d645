package analyze

import (
	"strings"

	"github.com/docsense/docsense/internal/backend"
)

// Per-field placeholders. The display model always carries all four
// insight fields; a missing or empty field in the backend response
// becomes a one-element placeholder list, never an error.
const (
	NoKeyInsights   = "No key insights available"
	NoDidYouKnow    = "No did-you-know facts available"
	NoCounterpoints = "No counterpoints available"
	NoConnections   = "No connections available"
)

// bundleFrom applies the field-level fallback policy independently
// per field: provided fields pass through unchanged, absent or empty
// ones become their placeholder.
func bundleFrom(p backend.InsightPayload) InsightBundle {
	return InsightBundle{
		KeyInsights:   orPlaceholder(p.KeyInsights, NoKeyInsights),
		DidYouKnow:    orPlaceholder(p.DidYouKnow, NoDidYouKnow),
		Counterpoints: orPlaceholder(p.Counterpoints, NoCounterpoints),
		Connections:   orPlaceholder(p.Connections, NoConnections),
	}
}

func orPlaceholder(values []string, placeholder string) []string {
	if len(values) == 0 {
		return []string{placeholder}
	}
	return values
}

// resolveScript picks the narration text: the backend's script field,
// else its text_content field, else the text we extracted ourselves.
// First non-empty wins.
func resolveScript(p backend.PodcastPayload, extracted string) string {
	if p.Script != nil && strings.TrimSpace(*p.Script) != "" {
		return *p.Script
	}
	if p.TextContent != nil && strings.TrimSpace(*p.TextContent) != "" {
		return *p.TextContent
	}
	return extracted
}

func relatedFrom(payloads []backend.RelatedPayload) []RelatedSection {
	sections := make([]RelatedSection, 0, len(payloads))
	for _, p := range payloads {
		sections = append(sections, RelatedSection{
			Text:  p.Text,
			Page:  p.PageNumber(),
			Score: p.Score,
		})
	}
	return sections
}
