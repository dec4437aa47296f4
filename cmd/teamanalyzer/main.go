package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/fabsGitHub/team-analyzer/internal/app"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
