// ABOUTME: Management commands for config, schema, accounts and tokens
// ABOUTME: Operate on the configured SQLite database directly

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/client"
	"github.com/2389/todoism/internal/config"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/store"
)

// defaultCLITokenTTL is the lifetime of tokens minted by the token command.
const defaultCLITokenTTL = 30 * 24 * time.Hour

// openStore loads the config and opens its database.
func openStore() (*config.Config, *store.SQLiteStore, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating database directory: %w", err)
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, s, nil
}

func newAccounts(cfg *config.Config, s *store.SQLiteStore) (*account.Service, error) {
	tr, err := i18n.New(cfg.App.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	return account.New(s, tr, slog.Default()), nil
}

// runInitDB creates the schema, dropping existing tables first with --drop.
func runInitDB(ctx context.Context, args []string) error {
	flags, err := parseFlags(args, nil, []string{"drop"})
	if err != nil {
		return err
	}

	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	green := color.New(color.FgGreen)
	if flags["drop"] != "" {
		if !confirm("This operation will delete the database, do you want to continue?") {
			fmt.Println("Aborted.")
			return nil
		}
		if err := s.Reset(ctx); err != nil {
			return fmt.Errorf("resetting database: %w", err)
		}
		green.Println("  ✓ Dropped tables")
	}

	green.Printf("  ✓ Initialized database: %s\n", cfg.Database.Path)
	return nil
}

// runAddUser creates an account with the given credentials.
func runAddUser(ctx context.Context, args []string) error {
	flags, err := parseFlags(args, []string{"username", "password"}, nil)
	if err != nil {
		return err
	}

	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	accounts, err := newAccounts(cfg, s)
	if err != nil {
		return err
	}

	user, err := accounts.Register(ctx, flags["username"], flags["password"])
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("username %q is already taken", strings.TrimSpace(flags["username"]))
		}
		return err
	}

	color.New(color.FgGreen).Printf("  ✓ Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

// runToken mints a bearer token for an existing user and saves it for the CLI.
func runToken(ctx context.Context, args []string) error {
	flags, err := parseFlags(args, []string{"username", "ttl"}, nil)
	if err != nil {
		return err
	}
	if flags["username"] == "" {
		return errors.New("--username flag is required")
	}

	ttl := defaultCLITokenTTL
	if raw := flags["ttl"]; raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid --ttl: %w", err)
		}
		if ttl <= 0 {
			return errors.New("--ttl must be positive")
		}
	}

	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := s.GetUserByUsername(ctx, flags["username"])
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("no user named %q", flags["username"])
		}
		return err
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}
	token, err := verifier.Generate(user.ID, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	tokenPath, err := client.SaveToken(token)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Saved token: %s\n", tokenPath)
	fmt.Printf("  User:    %s\n", user.Username)
	fmt.Printf("  Expires: %s\n", time.Now().Add(ttl).UTC().Format("Jan 02, 2006 15:04 MST"))
	return nil
}

// runDemo creates a demo account with the sample items.
func runDemo(ctx context.Context, args []string) error {
	flags, err := parseFlags(args, []string{"locale"}, nil)
	if err != nil {
		return err
	}

	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	accounts, err := newAccounts(cfg, s)
	if err != nil {
		return err
	}

	locale := flags["locale"]
	if locale == "" {
		locale = cfg.App.DefaultLocale
	}
	demo, err := accounts.CreateDemo(ctx, locale)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Println("  ✓ Created demo account")
	fmt.Printf("  Username: %s\n", demo.User.Username)
	fmt.Printf("  Password: %s\n", demo.Password)
	return nil
}

// runInit writes a config file from interactive answers with a fresh JWT secret.
func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("todoism configuration setup")
	fmt.Println("===========================")
	fmt.Println()

	defaultDBPath := filepath.Join(config.DataDir(), "todoism.db")

	outputFile := prompt(reader, "Config file path", config.DefaultPath())
	if _, err := os.Stat(outputFile); err == nil {
		if !isYes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", config.DefaultHTTPAddr)
	baseURL := prompt(reader, "Public base URL (leave empty to use the request host)", "")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDBPath)

	fmt.Println("\n--- Tailscale Configuration ---")
	tailscaleEnabled := isYes(prompt(reader, "Enable Tailscale?", "no"))
	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "todoism")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = isYes(prompt(reader, "Ephemeral node?", "no"))
		tsFunnel = isYes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Application ---")
	locale := prompt(reader, "Default locale (en_US/zh_Hans_CN)", config.DefaultLocale)

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	var cfg strings.Builder
	cfg.WriteString("# todoism configuration\n")
	cfg.WriteString("# Generated by todoism init\n\n")

	cfg.WriteString("server:\n")
	fmt.Fprintf(&cfg, "  http_addr: %q\n\n", httpAddr)

	cfg.WriteString("database:\n")
	fmt.Fprintf(&cfg, "  path: %q\n\n", dbPath)

	cfg.WriteString("auth:\n")
	fmt.Fprintf(&cfg, "  jwt_secret: %q\n", secret)
	cfg.WriteString("  token_ttl: \"1h\"\n")
	cfg.WriteString("  session_duration: \"168h\"\n\n")

	cfg.WriteString("app:\n")
	fmt.Fprintf(&cfg, "  items_per_page: %d\n", config.DefaultItemsPerPage)
	fmt.Fprintf(&cfg, "  default_locale: %q\n", locale)
	if baseURL != "" {
		fmt.Fprintf(&cfg, "  base_url: %q\n", baseURL)
	}
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	fmt.Fprintf(&cfg, "  enabled: %t\n", tailscaleEnabled)
	if tailscaleEnabled {
		fmt.Fprintf(&cfg, "  hostname: %q\n", tsHostname)
		if tsAuthKey != "" {
			fmt.Fprintf(&cfg, "  auth_key: %q\n", tsAuthKey)
		}
		fmt.Fprintf(&cfg, "  ephemeral: %t\n", tsEphemeral)
		fmt.Fprintf(&cfg, "  funnel: %t\n", tsFunnel)
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	fmt.Fprintf(&cfg, "  level: %q\n", logLevel)
	fmt.Fprintf(&cfg, "  format: %q\n\n", logFormat)

	cfg.WriteString("metrics:\n")
	cfg.WriteString("  enabled: false\n")
	fmt.Fprintf(&cfg, "  path: %q\n", config.DefaultMetricsPath)

	if _, err := config.Parse([]byte(cfg.String())); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  todoism initdb")
	fmt.Println("  todoism adduser --username you --password secret")
	fmt.Println("  todoism serve")
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func confirm(question string) bool {
	return isYes(prompt(bufio.NewReader(os.Stdin), question+" (y/N)", ""))
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}
