package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/resumind/ragserver/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = ""

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
