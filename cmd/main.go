package main

import (
	"os"

	"github.com/joho/godotenv"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		exit(1)
	}
}
