// ABOUTME: Interactive terminal client for a todoism server
// ABOUTME: Uses the saved API token and TODOISM_URL to reach the server

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/2389/todoism/internal/client"
)

const defaultURL = "http://localhost:8080"

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	baseURL := os.Getenv("TODOISM_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}

	token := client.LoadToken()
	if token == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ not logged in: run todoism-cli login <username> <password>"))
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(client.New(baseURL, token)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+err.Error()))
		os.Exit(1)
	}
}
