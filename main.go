package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ledgerbox/database"
	"ledgerbox/handlers"
	"ledgerbox/logger"
	"ledgerbox/middleware"
	"ledgerbox/migrations"
	"ledgerbox/services"
)

func main() {
	log := logger.New()
	handlers.Log = log

	services.LoadEnvVariables(log)

	if err := database.InitDB(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	log.Info().Msg("Running migrations...")
	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	gemini := services.NewGeminiFromEnv(log)
	handlers.Extractor = gemini
	handlers.Generator = gemini

	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.EnableCORS)

	// Register routes both bare and under /api so the frontend dev proxy and
	// direct callers hit the same handlers.
	registerRoutes(r)
	registerRoutes(r.PathPrefix("/api").Subrouter())

	// Serve the built frontend when present.
	fs := http.FileServer(http.Dir("./dist"))
	r.PathPrefix("/assets/").Handler(fs)
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/assets/") {
			log.Debug().Str("path", r.URL.Path).Msg("serving index.html")
		}
		http.ServeFile(w, r, "./dist/index.html")
	}).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Handler: r,
		Addr:    ":" + port,
		// Remote extraction calls may take up to 30s; leave headroom.
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Info().Str("port", port).Msg("Starting server")
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

// registerRoutes sets up all API routes
func registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	r.HandleFunc("/transactions", handlers.AddTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", handlers.UpdateTransaction).Methods("PUT")
	r.HandleFunc("/transactions/{id}", handlers.DeleteTransaction).Methods("DELETE")

	r.HandleFunc("/summary", handlers.GetSummary).Methods("GET")
	r.HandleFunc("/analytics", handlers.GetAnalytics).Methods("GET")
	r.HandleFunc("/dre", handlers.GetDRE).Methods("GET")

	r.HandleFunc("/ocr", handlers.OCRPost).Methods("POST")
	r.HandleFunc("/gemini-raw", handlers.GeminiRaw).Methods("POST")
	r.HandleFunc("/gemini-aggregate", handlers.GeminiAggregate).Methods("POST")

	r.HandleFunc("/export/sql", handlers.ExportSQL).Methods("GET")
	r.HandleFunc("/export/xls", handlers.ExportXLS).Methods("GET")
	r.HandleFunc("/import", handlers.ImportData).Methods("POST")
	r.HandleFunc("/clear", handlers.ClearAll).Methods("POST")
}
