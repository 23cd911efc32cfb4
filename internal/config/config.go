package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/yukikurage/workspace-api/internal/constants"
)

type Config struct {
	Env     string
	Port    string
	BaseURL string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	OIDC OIDCConfig

	AvatarAllowedHosts  []string
	AvatarInsecureHosts []string

	LogLevel  string
	LogFormat string
}

// OIDCConfig holds the OAuth client registration at the identity provider.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first if present.
func Load() *Config {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	return &Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		BaseURL:             strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		DBDriver:            getEnv("DB_DRIVER", "mysql"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBUser:              getEnv("DB_USER", "workspaceuser"),
		DBPassword:          getEnv("DB_PASSWORD", "workspacepassword"),
		DBName:              getEnv("DB_NAME", "workspaces"),
		DBPath:              getEnv("DB_PATH", "workspaces.db"),
		RedisHost:           getEnv("REDIS_HOST", ""),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		SessionSecret:       getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		AvatarAllowedHosts:  splitList(getEnv("AVATAR_ALLOWED_HOSTS", "googleusercontent.com,gravatar.com,githubusercontent.com")),
		AvatarInsecureHosts: splitList(getEnv("AVATAR_INSECURE_HOSTS", "")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		OIDC: OIDCConfig{
			Issuer:       getEnv("OIDC_ISSUER", "https://accounts.google.com"),
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.GinMode == "release"
}

// InviteURL builds the bearer link presented to invitees.
func (c *Config) InviteURL(token string) string {
	return c.BaseURL + constants.InviteURLPathBase + token
}

// WorkspaceURL is where a browser lands after redeeming an invite.
func (c *Config) WorkspaceURL(workspaceID string) string {
	return c.BaseURL + constants.WorkspaceURLPathBase + workspaceID
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
