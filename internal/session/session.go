// Package session holds the single "currently open document" and
// "last generated narration" state. It replaces scattered mutable
// globals with one record whose mutation points are the methods
// below; no network or extraction logic lives here.
package session

import "sync"

// Session is the active viewing state. Exactly one document is open
// at a time.
type Session struct {
	mu              sync.Mutex
	openDocumentID  string
	lastPodcastText string
}

func New() *Session {
	return &Session{}
}

// Open sets the active document and clears any narration generated
// for the previously open one.
func (s *Session) Open(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openDocumentID = id
	s.lastPodcastText = ""
}

// Close clears the active document.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openDocumentID = ""
}

// RecordPodcast stores the most recently generated narration text.
func (s *Session) RecordPodcast(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPodcastText = text
}

// OpenDocumentID returns the active document id, if any.
func (s *Session) OpenDocumentID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openDocumentID, s.openDocumentID != ""
}

// LastPodcastText returns the last generated narration, if any.
func (s *Session) LastPodcastText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPodcastText, s.lastPodcastText != ""
}
