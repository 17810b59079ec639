package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/httputil"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
	"github.com/redmonkez12/go-todo-auth/internal/todo"
)

// NewIdentityRouter wires the public register and login endpoints.
func NewIdentityRouter(cfg *config.Config, authHandler *auth.Handler, logger *logging.Logger) *chi.Mux {
	r := newBaseRouter(cfg, logger, string(config.ServiceIdentity))

	routes := func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	}
	r.Group(routes)
	r.Route("/api/users", routes)

	return r
}

// NewTodoRouter wires the todo endpoints, all behind the verification gate.
func NewTodoRouter(cfg *config.Config, todoHandler *todo.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := newBaseRouter(cfg, logger, string(config.ServiceTodos))

	routes := func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/", todoHandler.Create)
		r.Get("/", todoHandler.List)
		r.Put("/{id}", todoHandler.Update)
		r.Delete("/{id}", todoHandler.Delete)
	}
	r.Route("/todos", routes)
	r.Route("/api/todos", routes)

	return r
}

func newBaseRouter(cfg *config.Config, logger *logging.Logger, docsInstance string) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false, // bearer tokens only, no cookies
			MaxAge:           300,   // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", healthHandler(docsInstance))

	// Swagger UI exists only in development builds of the router
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*", "instance", docsInstance)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.InstanceName(docsInstance)))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "route not found", httputil.CodeNotFound, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// healthHandler reports that the service process is up
// @Summary      Health check
// @Description  Check if the service is running
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func healthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, HealthResponse{Status: service + " service is running"}, http.StatusOK)
	}
}
