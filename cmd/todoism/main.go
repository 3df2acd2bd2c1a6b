// ABOUTME: Entry point for the todoism server and its management commands
// ABOUTME: Serves the web UI and API, and manages config, schema and accounts

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/todoism/internal/config"
	"github.com/2389/todoism/internal/server"
)

// Version is set at build time.
var version = "dev"

const banner = `
 _            _       _
| |_ ___   __| | ___ (_)___ _ __ ___
| __/ _ \ / _' |/ _ \| / __| '_ ' _ \
| || (_) | (_| | (_) | \__ \ | | | | |
 \__\___/ \__,_|\___/|_|___/_| |_| |_|
`

func printUsage() {
	fmt.Println("Usage: todoism <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                Start the server")
	fmt.Println("  init                                 Create a new config file interactively")
	fmt.Println("  initdb [--drop]                      Create the database schema")
	fmt.Println("  adduser --username U --password P    Create an account")
	fmt.Println("  token --username U [--ttl 720h]      Mint an API token and save it")
	fmt.Println("  demo                                 Create a demo account with sample items")
	fmt.Println("  health                               Check server health")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  TODOISM_CONFIG   Config file path (default: ~/.config/todoism/config.yaml)")
	fmt.Println("  .env files in the working directory are loaded first.")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "initdb":
		err = runInitDB(ctx, args)
	case "adduser":
		err = runAddUser(ctx, args)
	case "token":
		err = runToken(ctx, args)
	case "demo":
		err = runDemo(ctx, args)
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, string, error) {
	configPath := config.DefaultPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      http://%s\n", cfg.Server.HTTPAddr)
	}
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	logger.Info("starting todoism",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"version", version,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	base := cfg.App.BaseURL
	if base == "" {
		base = "http://" + cfg.Server.HTTPAddr
	}
	url := strings.TrimSuffix(base, "/") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
