package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsense/docsense/internal/analyze"
	"github.com/docsense/docsense/internal/backend"
	"github.com/docsense/docsense/internal/render"
)

// analysisResponse wraps the display model with its rendered views.
type analysisResponse struct {
	*analyze.Analysis
	RelatedViews []render.RelatedView `json:"related_views,omitempty"`
	HTML         string               `json:"html,omitempty"`
}

func (s *Server) handleQuickAnalyze(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	analysis, err := s.orchestrator.QuickAnalyze(r.Context(), docID)
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.renderAnalysis(analysis))
}

func (s *Server) handleFullAnalyze(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	analysis, err := s.orchestrator.FullAnalyze(r.Context(), docID)
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.renderAnalysis(analysis))
}

func (s *Server) handlePodcast(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	podcast, err := s.orchestrator.GeneratePodcast(r.Context(), docID)
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, podcast)
}

func (s *Server) renderAnalysis(analysis *analyze.Analysis) analysisResponse {
	resp := analysisResponse{
		Analysis:     analysis,
		RelatedViews: render.RelatedViews(analysis.Related),
	}
	html, err := render.AnalysisHTML(analysis)
	if err != nil {
		s.log.Warn("analysis html rendering failed", "error", err)
	} else {
		resp.HTML = html
	}
	return resp
}

// writeAnalyzeError maps the pipeline error taxonomy onto statuses:
// too little text is a client-visible 422, backend trouble a 502.
func writeAnalyzeError(w http.ResponseWriter, err error) {
	var insufficient *analyze.InsufficientTextError
	if errors.As(err, &insufficient) {
		jsonError(w, insufficient.Error(), http.StatusUnprocessableEntity)
		return
	}
	var request *backend.RequestError
	if errors.As(err, &request) {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}
