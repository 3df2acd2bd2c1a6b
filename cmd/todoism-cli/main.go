// ABOUTME: Scriptable command-line client for the todoism API
// ABOUTME: Logs in with a password grant and manages items over /api/v1

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// URLEnv selects the server the client talks to.
const URLEnv = "TODOISM_URL"

const defaultURL = "http://localhost:8080"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func serverURL() string {
	if u := os.Getenv(URLEnv); u != "" {
		return u
	}
	return defaultURL
}
