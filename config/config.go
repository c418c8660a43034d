package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env               string
	Port              string
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	SQLitePath        string
	JWTSecret         string
	SessionTTL        time.Duration
	CookieSecure      bool
	MediaDir          string
	SiteURL           string
	SMTPHost          string
	SMTPPort          string
	SMTPFrom          string
	CORSOrigins       []string
	SeedAdminPassword string
}

func Load() *Config {
	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "blog"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		SQLitePath:        getEnv("SQLITE_PATH", "blog.db"),
		JWTSecret:         getEnv("JWT_SECRET", "default-secret"),
		SessionTTL:        getDuration("SESSION_TTL", 14*24*time.Hour),
		CookieSecure:      getBool("COOKIE_SECURE", false),
		MediaDir:          getEnv("MEDIA_DIR", "media"),
		SiteURL:           strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "25"),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@blog.local"),
		CORSOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin12345"),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
