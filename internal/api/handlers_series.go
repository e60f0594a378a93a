package api

import (
	"net/http"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/httputil"
)

// ──────────────────── Series ────────────────────

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListSeries(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	series, err := s.catalog.GetSeries(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, series)
}

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	var in catalog.SeriesInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	series, err := s.catalog.CreateSeries(r.Context(), &in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, series)
}

func (s *Server) handleUpdateSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	var in catalog.SeriesInput
	if err := httputil.ReadJSON(w, r, &in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	series, err := s.catalog.UpdateSeries(r.Context(), id, &in)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, series)
}

func (s *Server) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	if err := s.catalog.DeleteSeries(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
