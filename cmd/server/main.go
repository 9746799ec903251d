package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/smishing-defense/backend/internal/catalog"
	"github.com/smishing-defense/backend/internal/database"
	"github.com/smishing-defense/backend/internal/generator"
	"github.com/smishing-defense/backend/internal/stats"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load message catalog
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "./messages.json"
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatalf("Failed to load message catalog: %v", err)
	}
	log.Printf("Loaded %d training messages from %s", cat.Len(), catalogPath)

	// Initialize services and handlers
	statsService := stats.NewService(stats.NewPostgresStore(db))
	if err := statsService.Bootstrap(); err != nil {
		log.Fatalf("Failed to bootstrap stats document: %v", err)
	}
	statsHandler := stats.NewHandler(statsService)
	catalogHandler := catalog.NewHandler(cat)
	generatorHandler := generator.NewHandler(generator.NewGenerator())

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/messages", catalogHandler.GetMessages).Methods("GET")
	api.HandleFunc("/save-progress", statsHandler.SaveProgress).Methods("POST")
	api.HandleFunc("/user-stats/{userId}", statsHandler.GetUserStats).Methods("GET")
	api.HandleFunc("/admin/generate-messages", generatorHandler.GenerateMessages).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
