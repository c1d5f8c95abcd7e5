package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppName        string `json:"app_name" env:"STUDIO_APP_NAME"`
	ListenIP       string `json:"listen_ip" env:"STUDIO_LISTEN_IP"`
	ListenPort     int    `json:"listen_port" env:"STUDIO_LISTEN_PORT"`
	SessionKey     string `json:"session_key" env:"STUDIO_SESSION_KEY"`
	DatabasePath   string `json:"database_path" env:"STUDIO_DATABASE_PATH"`
	SessionDir     string `json:"session_dir" env:"STUDIO_SESSION_DIR"`
	LogLevel       string `json:"log_level" env:"LOG_LEVEL"`
	SecureCookies  bool   `json:"secure_cookies" env:"STUDIO_SECURE_COOKIES"`
	CaptchaEnabled bool   `json:"captcha_enabled" env:"STUDIO_CAPTCHA_ENABLED"`
}

var AppConfig Config

// Defaults returns the configuration used when no file sets a value.
func Defaults() Config {
	return Config{
		AppName:      "StudioFlow",
		ListenIP:     "127.0.0.1",
		ListenPort:   8080,
		DatabasePath: "./studioflow.db",
		SessionDir:   "./sessions",
		LogLevel:     "info",
	}
}

// LoadConfig fills AppConfig from defaults, then the JSON file at path (skipped
// when path is empty), then STUDIO_* environment variables.
func LoadConfig(path string) error {
	cfg := Defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if cfg.SessionKey == "" || cfg.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		slog.Warn("No session key configured, generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		cfg.SessionKey = hex.EncodeToString(randomKey)
	}

	AppConfig = cfg
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenIP, c.ListenPort)
}
