package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	api "github.com/Niraeuru/ClassroomConnect/internal/api/http"
	"github.com/Niraeuru/ClassroomConnect/internal/auth"
	authmw "github.com/Niraeuru/ClassroomConnect/internal/auth/middleware"
	"github.com/Niraeuru/ClassroomConnect/internal/config"
	"github.com/Niraeuru/ClassroomConnect/internal/db"
	"github.com/Niraeuru/ClassroomConnect/internal/generate"
	"github.com/Niraeuru/ClassroomConnect/internal/grading"
	"github.com/Niraeuru/ClassroomConnect/internal/quiz"
	"github.com/Niraeuru/ClassroomConnect/internal/rbac"
	storage "github.com/Niraeuru/ClassroomConnect/internal/storage"
	syncx "github.com/Niraeuru/ClassroomConnect/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := db.SeedClasses(ctx, dbh, cfg.SeedClasses); err != nil {
		log.Fatalf("seed classes: %v", err)
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh)
	engine := grading.NewEngine()

	// --- Question generation (delegate only when configured) ---
	var delegate generate.Delegate
	if cfg.AIBaseURL != "" {
		delegate = generate.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
		log.Printf("generation delegate enabled (model=%s)", cfg.AIModel)
	}
	genSvc := generate.NewService(delegate)

	// --- Auth ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := authmw.NewAuthService(secret)
	admin := authmw.AdminFallback{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh, admin))
	if cfg.EnableGuestAuth {
		r.Post("/auth/guest", auth.GuestLoginHandler(authSvc, dbh, cfg))
	}

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:view")).
			Get("/classes", api.ListClassesHandler(store))

		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:edit")).
			Put("/quizzes/{quizID}", api.UpdateQuizHandler(store))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(store))

		// Student flow
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(store, engine, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/quizzes/{quizID}/attempt", api.GetOwnAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// Authoring: document → question drafts
		pr.With(rbac.Require("quiz:generate")).
			Post("/generate", api.GenerateHandler(genSvc, bs, cfg.MaxUploadBytes))
		pr.With(rbac.Require("quiz:generate")).
			Get("/uploads/*", api.DownloadUploadHandler(bs))

		// Rosters (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
