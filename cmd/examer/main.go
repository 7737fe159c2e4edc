package main

import (
	"github.com/joho/godotenv"

	"github.com/mvp-joe/project-examer/internal/cli"
)

func main() {
	// EXAMER_* overrides may come from a local .env file
	_ = godotenv.Load()

	cli.Execute()
}
