package analyze

import "fmt"

// InsufficientTextError means the extracted text was too short for
// the requested operation. It is returned before any backend request
// is sent.
type InsufficientTextError struct {
	Op     string
	Length int
	Min    int
}

func (e *InsufficientTextError) Error() string {
	return fmt.Sprintf("%s needs at least %d characters of text, got %d", e.Op, e.Min, e.Length)
}
