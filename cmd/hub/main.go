package main

import (
	"log"

	"github.com/cynit/hub/internal/hub/app"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; a missing .env is fine
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
