package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	LLM       LLMConfig       `json:"llm"`
	WebSearch WebSearchConfig `json:"websearch"`
	History   HistoryConfig   `json:"history"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `json:"port"`
	// RequestsPerMinute caps how fast the chat endpoint accepts prompts.
	// Zero disables the limiter.
	RequestsPerMinute int `json:"requests_per_minute"`
}

// LLMConfig holds configuration for the OpenAI-compatible LLM backend
// (llama.cpp server, an OpenAI proxy, or anything speaking /v1/chat/completions)
type LLMConfig struct {
	Endpoint    string        `json:"endpoint"`
	Model       string        `json:"model"`
	APIKey      string        `json:"api_key"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout_seconds"`
	MaxRetries  int           `json:"max_retries"`
}

// WebSearchConfig holds configuration for web search functionality.
// Credentials live here, populated from the environment at load time;
// the search adapters never read the process environment themselves.
type WebSearchConfig struct {
	Provider     string `json:"provider"` // serpapi, tavily, google, bing or duckduckgo
	SerpAPIKey   string `json:"-"`
	TavilyAPIKey string `json:"-"`
	GoogleAPIKey string `json:"-"`
	GoogleCSEID  string `json:"-"`
	BingAPIKey   string `json:"-"`
}

// HistoryConfig holds configuration for conversation persistence
type HistoryConfig struct {
	Backend string `json:"backend"` // memory or sqlite
	DBPath  string `json:"db_path"`
}

// LoadConfig loads configuration from a JSON file and applies
// environment-sourced credentials on top
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := DefaultConfig()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// DefaultConfig returns a default configuration with credentials
// resolved from the environment
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              8000,
			RequestsPerMinute: 60,
		},
		LLM: LLMConfig{
			Endpoint:    "http://127.0.0.1:8080/v1",
			Model:       "llama-3.1-8b-instruct",
			MaxTokens:   4096,
			Temperature: 0.7,
			Timeout:     600,
			MaxRetries:  3,
		},
		WebSearch: WebSearchConfig{
			Provider: "serpapi",
		},
		History: HistoryConfig{
			Backend: "memory",
			DBPath:  "./data/chats.db",
		},
	}
	cfg.applyEnv()
	return cfg
}

// applyEnv fills credential fields from the process environment. A .env
// file in the working directory is honored when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.WebSearch.SerpAPIKey, "SERPAPI_API_KEY")
	setIfPresent(&c.WebSearch.TavilyAPIKey, "TAVILY_API_KEY")
	setIfPresent(&c.WebSearch.GoogleAPIKey, "GOOGLE_API_KEY")
	setIfPresent(&c.WebSearch.GoogleCSEID, "GOOGLE_CSE_ID")
	setIfPresent(&c.WebSearch.BingAPIKey, "BING_API_KEY")
	setIfPresent(&c.LLM.APIKey, "LLM_API_KEY")
}
