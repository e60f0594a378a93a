package api

import (
	"net/http"

	"github.com/juanjparedez/mundobl/internal/jobs"
)

// handleMigrateImages queues the image sweep. The sweep itself runs on the
// worker so the request returns immediately.
func (s *Server) handleMigrateImages(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		s.respondError(w, http.StatusServiceUnavailable, "job queue is not configured")
		return
	}
	taskID, err := jobs.EnqueueImageMigration(r.Context(), s.queue)
	if err != nil {
		s.logger.Error("enqueue image migration", "error", err)
		s.respondError(w, http.StatusServiceUnavailable, "failed to enqueue image migration")
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}
