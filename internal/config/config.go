package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	JWTRefreshSecret       string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	PasswordResetTTL       time.Duration
	DefaultStudentPassword string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	NoteMaxSizeMB          int
	OpenAIAPIKey           string
	TutorModel             string
	TutorMaxSources        int
	TutorRateLimit         int
	TutorRateWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BIOTUTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "BioTutor API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "168h")
	v.SetDefault("password_reset_ttl", "1h")
	v.SetDefault("default_student_password", "BioTutor2025!")
	v.SetDefault("cloudinary.folder", "biotutor/notes")
	v.SetDefault("note.max_size_mb", 10)
	v.SetDefault("tutor.model", "gpt-4o-mini")
	v.SetDefault("tutor.max_sources", 3)
	v.SetDefault("tutor.rate_limit", 10)
	v.SetDefault("tutor.rate_window", "1m")

	accessTTL, err := time.ParseDuration(v.GetString("jwt.access_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid access token ttl: %w", err)
	}

	refreshTTL, err := time.ParseDuration(v.GetString("jwt.refresh_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh token ttl: %w", err)
	}

	resetTTL, err := time.ParseDuration(v.GetString("password_reset_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid password reset ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("tutor.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid tutor rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTRefreshSecret:       v.GetString("jwt.refresh_secret"),
		AccessTokenTTL:         accessTTL,
		RefreshTokenTTL:        refreshTTL,
		PasswordResetTTL:       resetTTL,
		DefaultStudentPassword: v.GetString("default_student_password"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		NoteMaxSizeMB:          v.GetInt("note.max_size_mb"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		TutorModel:             v.GetString("tutor.model"),
		TutorMaxSources:        v.GetInt("tutor.max_sources"),
		TutorRateLimit:         v.GetInt("tutor.rate_limit"),
		TutorRateWindow:        rateWindow,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.NoteMaxSizeMB <= 0 {
		cfg.NoteMaxSizeMB = 10
	}

	if cfg.TutorMaxSources <= 0 {
		cfg.TutorMaxSources = 3
	}

	if cfg.TutorRateLimit <= 0 {
		cfg.TutorRateLimit = 10
	}

	return cfg, nil
}
