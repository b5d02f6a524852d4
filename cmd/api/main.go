package main

import (
	"log"
	"os"
	"time"

	"github.com/gildgrove/gildgrove-golang/internal/ai"
	"github.com/gildgrove/gildgrove-golang/internal/database"
	"github.com/gildgrove/gildgrove-golang/internal/handlers"
	"github.com/gildgrove/gildgrove-golang/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Primary Database Connection (Read/Write) ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	app := &handlers.Handlers{
		DB: db,
	}

	// 2. --- AI Assistant (optional) ---
	// The assistant needs its own read-only connection; without both the
	// key and the replica DSN the store runs fine, just without it.
	geminiKey := os.Getenv("GEMINI_API_KEY")
	readOnlyDSN := os.Getenv("DB_DSN_READONLY")
	switch {
	case geminiKey == "":
		log.Println("GEMINI_API_KEY not set; AI assistant disabled.")
	case readOnlyDSN == "":
		log.Println("DB_DSN_READONLY not set; AI assistant disabled.")
	default:
		dbReadOnly, err := database.OpenDBWithDSN(readOnlyDSN)
		if err != nil {
			log.Fatalf("Failed to connect to read-only database: %v", err)
		}
		defer dbReadOnly.Close()

		aiService, err := ai.NewAIService(geminiKey, dbReadOnly)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}

		app.DBReadOnly = dbReadOnly
		app.AIService = aiService
	}

	// 3. --- Background Worker: Stock Alerts ---
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		log.Println("Background worker started: monitoring stock levels...")

		for range ticker.C {
			app.ProcessStockAlerts()
		}
	}()

	// 4. --- Router & Server ---
	router := routes.SetupRouter(app)

	log.Println("Starting GILD + GROVE API server on port 8080...")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
