package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/juanjparedez/mundobl/internal/auth"
	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/config"
	"github.com/juanjparedez/mundobl/internal/httputil"
	"github.com/juanjparedez/mundobl/internal/jobs"
	"github.com/juanjparedez/mundobl/internal/models"
	"github.com/juanjparedez/mundobl/internal/settings"
	"github.com/juanjparedez/mundobl/internal/version"
)

type Server struct {
	config    *config.Config
	catalog   *catalog.Service
	auth      *auth.Middleware
	authH     *auth.Handler
	settingsH *settings.Handler
	wsHub     *WSHub
	queue     jobs.Enqueuer
	limiter   *clientLimiter
	proxies   proxyList
	logger    *slog.Logger
	router    chi.Router
}

// Deps are the collaborators the HTTP surface dispatches to. Queue and
// Settings are optional: without a queue the image migration endpoint
// answers 503, without a settings store its routes are not mounted.
type Deps struct {
	Catalog  *catalog.Service
	Verifier *auth.Verifier
	Hub      *WSHub
	Queue    jobs.Enqueuer
	Settings settings.Store
}

func NewServer(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	mw := auth.NewMiddleware(deps.Verifier)
	s := &Server{
		config:  cfg,
		catalog: deps.Catalog,
		auth:    mw,
		authH:   auth.NewHandler(mw),
		wsHub:   deps.Hub,
		queue:   deps.Queue,
		limiter: newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		proxies: parseProxies(cfg.TrustedProxies, logger),
		logger:  logger,
		router:  chi.NewRouter(),
	}
	if deps.Settings != nil {
		s.settingsH = settings.NewHandler(deps.Settings, logger)
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) WSHub() *WSHub {
	return s.wsHub
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(s.realIP)
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	editors := []models.Role{models.RoleAdmin, models.RoleModerator}
	admin := []models.Role{models.RoleAdmin}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", s.authH.Router())

		// Series
		r.Get("/series", s.handleListSeries)
		r.Get("/series/{id}", s.handleGetSeries)
		r.With(s.auth.Require(editors...), s.rateLimit).Post("/series", s.handleCreateSeries)
		r.With(s.auth.Require(editors...), s.rateLimit).Put("/series/{id}", s.handleUpdateSeries)
		r.With(s.auth.Require(admin...), s.rateLimit).Delete("/series/{id}", s.handleDeleteSeries)

		// Actors and directors
		for _, kind := range []models.RefKind{models.KindActor, models.KindDirector} {
			base := "/" + string(kind) + "s"
			r.Get(base, s.handleListPeople(kind))
			r.Get(base+"/{id}", s.handleGetPerson(kind))
			r.With(s.auth.Require(editors...), s.rateLimit).Put(base+"/{id}", s.handleUpdatePerson(kind))
			r.With(s.auth.Require(admin...), s.rateLimit).Delete(base+"/{id}", s.handleDeletePerson(kind))
			r.With(s.auth.Require(admin...), s.rateLimit).Post(base+"/merge", s.handleMergePeople(kind))
		}

		// Reference lists
		for path, kind := range referencePaths {
			r.Get("/"+path, s.handleListReferences(kind))
		}

		// Admin
		r.With(s.auth.Require(admin...), s.rateLimit).Post("/admin/images/migrate", s.handleMigrateImages)
		if s.settingsH != nil {
			r.Route("/admin/settings", func(r chi.Router) {
				r.Use(s.auth.Require(admin...), s.rateLimit)
				r.Mount("/", s.settingsH.Router())
			})
		}

		// Live events
		r.With(s.auth.Require(editors...)).Get("/events", s.handleWebSocket)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Load().Version,
	})
}

// ──────────────────── Responses ────────────────────

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	httputil.WriteJSON(w, statusCode, data)
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	httputil.WriteError(w, statusCode, message)
}

// respondServiceError maps catalog errors onto status codes. Anything
// unclassified is logged and hidden behind a generic 500.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *catalog.ValidationError
		cerr *catalog.ConflictError
		berr *catalog.ReferentialBlockError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &berr):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &cerr), errors.Is(err, catalog.ErrDuplicate):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrInvalidReference):
		s.respondError(w, http.StatusBadRequest, "referenced record does not exist")
	case errors.Is(err, catalog.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
	default:
		s.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()), "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ──────────────────── Middleware ────────────────────

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID honours an incoming X-Request-ID or mints a new one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
