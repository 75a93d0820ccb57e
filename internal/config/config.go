package config

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Upload  UploadConfig
	Render  RenderConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           string
	Env            string
	AllowedOrigins []string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// IsDev reports whether the server runs in the dev environment
func (s ServerConfig) IsDev() bool {
	return s.Env == "dev"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxMB int
}

// MaxBytes returns the upload limit in bytes
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxMB) << 20
}

// RenderConfig holds export backend configuration
type RenderConfig struct {
	RSVGConvertPath string
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("RSVG_CONVERT_PATH", "rsvg-convert")

	// Read from .env files based on environment
	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// The .env file is optional
	_ = viper.ReadInConfig()

	// Environment variables override .env file values
	viper.AutomaticEnv()

	viper.BindEnv("HOST")
	viper.BindEnv("PORT")
	viper.BindEnv("ENVIRONMENT")
	viper.BindEnv("ALLOWED_ORIGINS")
	viper.BindEnv("LOG_LEVEL")
	viper.BindEnv("MAX_UPLOAD_MB")
	viper.BindEnv("RSVG_CONVERT_PATH")

	var config Config
	config.Server.Host = viper.GetString("HOST")
	config.Server.Port = viper.GetString("PORT")
	config.Server.Env = viper.GetString("ENVIRONMENT")
	config.Server.AllowedOrigins = splitOrigins(viper.GetString("ALLOWED_ORIGINS"))
	config.Logging.Level = strings.ToLower(viper.GetString("LOG_LEVEL"))
	config.Upload.MaxMB = viper.GetInt("MAX_UPLOAD_MB")
	config.Render.RSVGConvertPath = GetStringOrDefault("RSVG_CONVERT_PATH", "rsvg-convert")

	if config.Upload.MaxMB <= 0 {
		config.Upload.MaxMB = 10
	}

	log.Debug().
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Int("max_upload_mb", config.Upload.MaxMB).
		Str("rsvg_convert", config.Render.RSVGConvertPath).
		Msg("Configuration loaded")

	return &config, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// GetStringOrDefault returns the value from viper if set, otherwise returns the default
func GetStringOrDefault(envVar, def string) string {
	if viper.IsSet(envVar) && viper.GetString(envVar) != "" {
		return viper.GetString(envVar)
	}
	return def
}
