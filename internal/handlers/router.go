package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/elastic"
	"github.com/sirdesai22/hackollab/internal/services"
	"github.com/sirdesai22/hackollab/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	Store    store.Store
	Verifier auth.Verifier
	// Search is nil when no Elasticsearch is configured.
	Search         *elastic.Searcher
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimit      int
	Production     bool
	Metrics        http.Handler
}

// Handler serves the JSON API.
type Handler struct {
	users      *services.Users
	projects   *services.Projects
	hackathons *services.Hackathons
	interests  *services.Interests
	invites    *services.Invites
	ping       func(context.Context) error
	search     *elastic.Searcher
	production bool
}

func New(opts RouterOptions) *Handler {
	users := services.NewUsers(opts.Store)
	return &Handler{
		users:      users,
		projects:   services.NewProjects(opts.Store, users),
		hackathons: services.NewHackathons(opts.Store, users),
		interests:  services.NewInterests(opts.Store, users),
		invites:    services.NewInvites(opts.Store, users),
		ping:       opts.Store.Ping,
		search:     opts.Search,
		production: opts.Production,
	}
}

// Router builds the HTTP router: CORS, rate limiting, access logs and
// tracing around the public and token-protected API routes.
func Router(opts RouterOptions) http.Handler {
	h := New(opts)
	r := chi.NewRouter()

	r.Use(cors.New(corsOptions(opts.AllowedOrigins)).Handler)
	r.Use(accessLog(opts.Logger)...)
	r.Use(recoverer(opts.Production))
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/health", h.health)

	authed := auth.Middleware(opts.Verifier)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.index)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.With(authed).Post("/", h.upsertUser)
			r.With(authed).Put("/me", h.updateMe)
			r.Get("/{id}", h.getUser)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.With(authed).Post("/", h.createProject)
			r.Get("/my-projects/{externalId}", h.myProjects)
			r.Get("/{id}", h.getProject)
			r.With(authed).Patch("/{id}", h.updateProject)
			r.With(authed).Post("/{id}/interest", h.projectInterest)
		})

		r.Route("/hackathons", func(r chi.Router) {
			r.Get("/", h.listHackathons)
			r.With(authed).Post("/", h.createHackathon)
			r.Get("/{id}", h.getHackathon)
		})

		r.Route("/interests", func(r chi.Router) {
			r.With(authed).Post("/", h.declareInterest)
			r.Get("/user/{userId}", h.userInterests)
		})

		r.Route("/invites", func(r chi.Router) {
			r.With(authed).Post("/", h.sendInvite)
			r.With(authed).Post("/bulk", h.bulkInvite)
			r.Get("/received", h.receivedInvites)
			r.Get("/sent/{senderId}", h.sentInvites)
			r.Get("/project/{projectId}", h.projectInvites)
			r.Get("/user/{externalId}", h.externalInvites)
			r.With(authed).Patch("/{id}", h.respondInvite)
		})

		r.Get("/search", h.searchIndex)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	return otelhttp.NewHandler(r, "hackollab-api")
}

// corsOptions allows credentials only for an explicit origin list. An empty
// list or a "*" entry admits any origin without credentials.
func corsOptions(origins []string) cors.Options {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")
	if wildcard {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}
}

func principal(r *http.Request) *auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
