package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aaronwald/rawdash/internal/client"
	"github.com/aaronwald/rawdash/internal/config"
	"github.com/spf13/cobra"
)

const userAgent = "rawdash-cli"

// Global flags
var (
	configPath string
	apiURLFlag string
	apiKeyFlag string
	debugLog   bool
	quietLog   bool
)

// AddGlobalFlags registers the persistent flags shared by every command
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <user config dir>/rawdash/config.yaml)")
	root.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (overrides $RAWDASH_API_URL)")
	root.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Backend API key (overrides $RAWDASH_API_KEY)")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&quietLog, "quiet", false, "Only log errors")
}

// loadSettings resolves flags > environment > config file > defaults
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if apiKeyFlag != "" {
		cfg.APIKey = apiKeyFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// commandContext returns the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newAPIClient(cfg *config.Config) (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:    cfg.APIURL,
		APIKey:     cfg.APIKey,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debugLog:
		level = slog.LevelDebug
	case quietLog:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// validateOutput accepts the formats list commands understand
func validateOutput(output string) (bool, error) {
	switch strings.ToLower(output) {
	case "", "text", "table":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported output format '%s' (expected text or json)", output)
	}
}
