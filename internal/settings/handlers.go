package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juanjparedez/mundobl/internal/httputil"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Router expects the caller to enforce admin access.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Put("/", h.update)
	r.Delete("/{key}", h.remove)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.GetAll(r.Context())
	if err != nil {
		h.logger.Error("load settings", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	settingsMap := make(map[string]string, len(all))
	for _, s := range all {
		settingsMap[s.Key] = s.Value
	}
	httputil.WriteJSON(w, http.StatusOK, settingsMap)
}

// update validates every pair before writing any of them. Changes apply on
// the next restart.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for key, value := range req {
		if err := Validate(key, value); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	for key, value := range req {
		if err := h.store.Set(r.Context(), key, value); err != nil {
			h.logger.Error("save setting", "key", key, "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to save setting")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := validators[key]; !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown setting")
		return
	}
	if err := h.store.Delete(r.Context(), key); err != nil {
		h.logger.Error("delete setting", "key", key, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
