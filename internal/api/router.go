package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/oralquiz/grader/internal/api/handlers"
	"github.com/oralquiz/grader/internal/api/middleware"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/grading"
	"github.com/oralquiz/grader/internal/questions"
)

type Router struct {
	mux     *chi.Mux
	db      *pgxpool.Pool
	redis   *redis.Client
	cfg     *config.Config
	grading *grading.Service
	store   questions.Store
}

// NewRouter wires the HTTP surface. db and rdb may be nil when the service
// runs file-backed without a cache.
func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, svc *grading.Service, store questions.Store) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		db:      db,
		redis:   rdb,
		cfg:     cfg,
		grading: svc,
		store:   store,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	// Grading holds the sole recording device for the length of an attempt,
	// so a small budget is plenty.
	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		questionsH := handlers.NewQuestionsHandler(rt.store)
		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionsH.List)
			r.Get("/random", questionsH.Random)
			r.Get("/{id}", questionsH.Get)
		})

		gradeH := handlers.NewGradeHandler(rt.grading, rt.store, rt.cfg.Grading)
		r.Post("/grade", gradeH.Grade)
	})

	return r
}
