package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	gates "github.com/terraconstructs/articles/internal/middleware"
	"github.com/terraconstructs/articles/internal/services/account"
	"github.com/terraconstructs/articles/internal/services/article"
	"github.com/terraconstructs/articles/internal/services/review"
	"github.com/terraconstructs/articles/internal/telemetry"
)

// RouterOptions controls the construction of the API router.
// Accounts, Articles, Reviews and Verifier are required.
type RouterOptions struct {
	Accounts      *account.Service
	Articles      *article.Service
	Reviews       *review.Service
	Verifier      gates.TokenVerifier
	Metrics       *telemetry.Metrics
	MetricsPath   string
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, the
// authorization pipeline and the API handlers mounted. Gate misconfiguration
// is reported here, before any request is served.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	if opts.Accounts == nil || opts.Articles == nil || opts.Reviews == nil {
		return nil, errors.New("router requires account, article and review services")
	}

	var recorder gates.GateRecorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}
	composer, err := gates.NewComposer(gates.Dependencies{
		Verifier:   opts.Verifier,
		Users:      opts.Accounts,
		Authorship: opts.Articles,
		Reviews:    opts.Reviews,
		Respond:    respondError,
		Metrics:    recorder,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.Metrics.Handler())
	}

	// gate collects the first configuration error so route declarations stay flat.
	var gateErr error
	gate := func(g gates.Gates) func(http.Handler) http.Handler {
		mw, err := composer.Gate(g)
		if err != nil {
			if gateErr == nil {
				gateErr = err
			}
			return func(next http.Handler) http.Handler { return next }
		}
		return mw
	}

	authHandlers := NewAuthHandlers(opts.Accounts)
	users := NewUserHandlers(opts.Accounts)
	articles := NewArticleHandlers(opts.Articles)
	reviews := NewReviewHandlers(opts.Reviews)

	selfOwned := gates.SelfOwnership
	articleOwned := gates.ArticleOwnership
	reviewOwned := gates.ReviewOwnership

	r.Route("/api", func(r chi.Router) {
		r.Post("/registration", authHandlers.Register)
		r.Post("/auth", authHandlers.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(composer.Authenticate())

			r.Route("/users", func(r chi.Router) {
				open := gate(gates.Gates{})
				r.With(open).Get("/", users.List)
				r.With(open).Get("/{id}", users.Get)
				r.With(open).Get("/authorship/{id}", users.AuthorsOfArticle)

				r.With(gate(gates.Gates{Roles: []models.Role{models.RoleAdmin}})).Post("/admin", users.Create)

				self := gate(gates.Gates{Ownership: &selfOwned})
				r.With(self).Patch("/{id}", users.Update)
				r.With(self).Delete("/{id}", users.Delete)
			})

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articles.List)
				r.Get("/authorship/{id}", articles.ByAuthor)

				owned := gate(gates.Gates{Ownership: &articleOwned})
				r.With(owned).Get("/{id}", articles.Get)
				r.With(owned).Post("/", articles.Create)
				r.With(owned).Patch("/{id}", articles.Update)
				r.With(owned).Delete("/{id}", articles.Delete)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/{id}", reviews.Get)
				r.Get("/articles/{id}", reviews.ByArticle)
				r.Get("/users/{id}", reviews.ByAuthor)

				owned := gate(gates.Gates{Ownership: &reviewOwned})
				r.With(owned).Post("/", reviews.Create)
				r.With(owned).Delete("/{id}", reviews.Delete)
			})
		})
	})

	if gateErr != nil {
		return nil, gateErr
	}
	return r, nil
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext.
func NewH2CHandler(opts RouterOptions) (http.Handler, error) {
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}
	return h2c.NewHandler(router, &http2.Server{}), nil
}
