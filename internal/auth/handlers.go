package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juanjparedez/mundobl/internal/httputil"
	"github.com/juanjparedez/mundobl/internal/models"
)

type Handler struct {
	mw *Middleware
}

func NewHandler(mw *Middleware) *Handler {
	return &Handler{mw: mw}
}

// Router serves the session introspection endpoint used by the admin UI to
// decide which controls to show.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.With(h.mw.Require(models.RoleAdmin, models.RoleModerator, models.RoleVisitor)).Get("/me", h.me)
	return r
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"subject": user.Subject,
		"email":   user.Email,
		"role":    user.Role,
		"canEdit": CheckPermission(user.Role, models.RoleAdmin, models.RoleModerator),
	})
}
