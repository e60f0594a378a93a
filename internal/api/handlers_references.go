package api

import (
	"net/http"

	"github.com/juanjparedez/mundobl/internal/models"
)

// referencePaths maps the public list routes onto lookup tables.
var referencePaths = map[string]models.RefKind{
	"tags":                 models.KindTag,
	"genres":               models.KindGenre,
	"countries":            models.KindCountry,
	"languages":            models.KindLanguage,
	"production-companies": models.KindProductionCompany,
}

func (s *Server) handleListReferences(kind models.RefKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.catalog.ListReferences(r.Context(), kind)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, list)
	}
}
