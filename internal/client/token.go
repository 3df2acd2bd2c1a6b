// ABOUTME: Token persistence shared by the command-line frontends
// ABOUTME: Reads TODOISM_TOKEN or the token file in the config directory

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/todoism/internal/config"
)

// TokenEnv overrides the saved token when set.
const TokenEnv = "TODOISM_TOKEN"

// TokenPath returns the file the token is saved to.
func TokenPath() string {
	return filepath.Join(config.Dir(), "token")
}

// LoadToken returns the token from TODOISM_TOKEN or the token file, or "".
func LoadToken() string {
	if token := os.Getenv(TokenEnv); token != "" {
		return token
	}
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken writes token to TokenPath with owner-only permissions.
func SaveToken(token string) (string, error) {
	path := TokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing token file: %w", err)
	}
	return path, nil
}
