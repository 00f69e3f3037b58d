package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress  string `yaml:"http_address"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	LiveURL      string `yaml:"live_url"`
	LiveModel    string `yaml:"live_model"`
	ChatModel    string `yaml:"chat_model"`
	SystemPrompt string `yaml:"system_prompt"`
	Voice        string `yaml:"voice"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then environment
// variables, and returns Config with sane defaults. Environment variables win
// over file values. Empty URL, model and voice fields mean the defaults of
// the component that consumes them.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, &cfg); err != nil {
			log.Printf("config: cannot read %s: %v", path, err)
		}
	}

	cfg.HTTPAddress = envOr("HTTP_ADDRESS", cfg.HTTPAddress)
	cfg.GeminiAPIKey = envOr("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.LiveURL = envOr("GEMINI_LIVE_URL", cfg.LiveURL)
	cfg.LiveModel = envOr("LIVE_MODEL", cfg.LiveModel)
	cfg.ChatModel = envOr("CHAT_MODEL", cfg.ChatModel)
	cfg.SystemPrompt = envOr("SYSTEM_PROMPT", cfg.SystemPrompt)
	cfg.Voice = envOr("VOICE", cfg.Voice)

	if cfg.HTTPAddress == "" {
		cfg.HTTPAddress = ":8080"
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - live audio and chat will not work")
	}

	log.Printf("config: HTTP_ADDRESS=%s", cfg.HTTPAddress)
	return cfg
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
