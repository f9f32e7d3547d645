package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsense/docsense/internal/backend"
	"github.com/docsense/docsense/internal/registry"
)

// handleListDocuments refreshes the registry from the backend and
// returns the fresh listing.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.registry.Refresh(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	if docs == nil {
		docs = []backend.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleOpenDocument is the view transition into a document: resolve
// its metadata and make it the session's active document.
func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	doc, err := s.registry.Lookup(docID)
	if errors.Is(err, registry.ErrNotFound) {
		// The registry may be stale; try one refresh before giving up.
		if _, err := s.registry.Refresh(r.Context()); err != nil {
			jsonError(w, "failed to refresh documents: "+err.Error(), http.StatusBadGateway)
			return
		}
		doc, err = s.registry.Lookup(docID)
		if err != nil {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
	}

	s.session.Open(docID)
	writeJSON(w, http.StatusOK, doc)
}

// handleCloseSession is the "go back" view transition.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.session.Close()
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// handleDeleteDocument deletes on the backend and refreshes; the
// registry never drops a document before the backend confirms.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	if err := s.registry.Remove(r.Context(), docID); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if open, ok := s.session.OpenDocumentID(); ok && open == docID {
		s.session.Close()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "doc_id": docID})
}

// handleBulkUpload forwards uploaded PDFs to the backend and then
// refreshes the registry so the new documents are listed.
func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []backend.UploadFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			jsonError(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		files = append(files, backend.UploadFile{Name: header.Filename, Data: f})
	}
	if len(files) == 0 {
		jsonError(w, "no files provided", http.StatusBadRequest)
		return
	}

	uploaded, err := s.backend.BulkUpload(r.Context(), files)
	if err != nil {
		jsonError(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if _, err := s.registry.Refresh(r.Context()); err != nil {
		s.log.Warn("refresh after upload failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]int{"uploaded": uploaded})
}
