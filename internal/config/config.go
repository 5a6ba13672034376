package config

import (
	"os"
	"strings"
	"time"

	"github.com/yashith03/portfolio/internal/github"
)

// Config holds application configuration
type Config struct {
	Port string
	Env  string

	// GitHubToken is passed through to the provider as-is. A missing or bad
	// token is not an error here; it surfaces as a failed widget load.
	GitHubToken    string
	GitHubUsername string
	GitHubGraphQL  string
	HTTPTimeout    time.Duration

	// How long an untouched widget view stays mounted
	WidgetTTL time.Duration

	CORSOrigins []string
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubUsername: getEnv("GITHUB_USERNAME", "yashith03"),
		GitHubGraphQL:  getEnv("GITHUB_GRAPHQL_URL", github.DefaultGraphQLURL),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 30*time.Second),

		WidgetTTL: getDuration("WIDGET_TTL", 30*time.Minute),

		CORSOrigins: getList("CORS_ORIGINS"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// getList splits a comma-separated variable, dropping blanks
func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
