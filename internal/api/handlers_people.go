package api

import (
	"fmt"
	"net/http"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/httputil"
	"github.com/juanjparedez/mundobl/internal/models"
)

// ──────────────────── Actors & Directors ────────────────────

func (s *Server) handleListPeople(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.catalog.ListPeople(r.Context(), kind, r.URL.Query().Get("q"))
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, list)
	}
}

func (s *Server) handleGetPerson(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s id", kind))
			return
		}
		person, err := s.catalog.GetPerson(r.Context(), kind, id)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, person)
	}
}

func (s *Server) handleUpdatePerson(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s id", kind))
			return
		}
		var in catalog.PersonInput
		if err := httputil.ReadJSON(w, r, &in); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		person, err := s.catalog.UpdatePerson(r.Context(), kind, id, &in)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, person)
	}
}

func (s *Server) handleDeletePerson(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s id", kind))
			return
		}
		if err := s.catalog.DeletePerson(r.Context(), kind, id); err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleMergePeople(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.MergeInput
		if err := httputil.ReadJSON(w, r, &in); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		res, err := s.catalog.MergePeople(r.Context(), kind, in)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, res)
	}
}
