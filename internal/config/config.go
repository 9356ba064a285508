package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultDBPath     = "dormitory.db"
	DefaultListenAddr = "127.0.0.1:3000"
	DefaultMCPPath    = "/mcp"
	DefaultOllamaURL  = "http://localhost:11434"
	DefaultChatModel  = "llama3.1"
	DefaultEmbedModel = "nomic-embed-text"
)

type Config struct {
	// DBPath is the SQLite file shared by the dispatcher and the chat
	// loop's startup snapshot.
	DBPath     string `toml:"db_path"`
	ListenAddr string `toml:"listen_addr"`
	MCPPath    string `toml:"mcp_path"`

	OllamaURL  string `toml:"ollama_url"`
	ChatModel  string `toml:"model"`
	EmbedModel string `toml:"embed_model"`

	// TopK bounds retrieval per chat turn; MaxHistory bounds the
	// conversation to MaxHistory user/assistant pairs.
	TopK       int `toml:"top_k"`
	MaxHistory int `toml:"max_history"`

	// Per-IP token bucket limits applied by the dispatcher; loopback
	// clients are exempt.
	RateLimitRPS   int `toml:"rate_limit_rps"`
	RateLimitBurst int `toml:"rate_limit_burst"`
}

func Default() Config {
	return Config{
		DBPath:         DefaultDBPath,
		ListenAddr:     DefaultListenAddr,
		MCPPath:        DefaultMCPPath,
		OllamaURL:      DefaultOllamaURL,
		ChatModel:      DefaultChatModel,
		EmbedModel:     DefaultEmbedModel,
		TopK:           5,
		MaxHistory:     10,
		RateLimitRPS:   60,
		RateLimitBurst: 20,
	}
}

// Load layers defaults, an optional TOML file, dotenv files and the
// process environment, in increasing precedence. A missing config file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	if err := loadDotEnvPrecedence(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	mergeEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnvPrecedence reads .env then .env.local; values already
// present in the environment win.
func loadDotEnvPrecedence() error {
	for _, name := range []string{".env", ".env.local"} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				if setErr := os.Setenv(k, v); setErr != nil {
					return setErr
				}
			}
		}
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OLLAMA_URL")); v != "" {
		cfg.OllamaURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MODEL")); v != "" {
		cfg.ChatModel = v
	}
	if v := strings.TrimSpace(os.Getenv("DORMMCP_DB")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("DORMMCP_LISTEN")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DORMMCP_MCP_PATH")); v != "" {
		cfg.MCPPath = v
	}
	if v := strings.TrimSpace(os.Getenv("DORMMCP_EMBED_MODEL")); v != "" {
		cfg.EmbedModel = v
	}
	if n, ok := envInt("DORMMCP_TOP_K"); ok {
		cfg.TopK = n
	}
	if n, ok := envInt("DORMMCP_MAX_HISTORY"); ok {
		cfg.MaxHistory = n
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path must not be empty")
	}
	if _, _, err := net.SplitHostPort(strings.TrimSpace(c.ListenAddr)); err != nil {
		return fmt.Errorf("listen_addr must be host:port (e.g. %q): %w", DefaultListenAddr, err)
	}
	if !strings.HasPrefix(c.MCPPath, "/") {
		return errors.New("mcp_path must start with \"/\"")
	}
	parsed, err := url.Parse(strings.TrimSpace(c.OllamaURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("ollama_url must be an absolute http(s) URL, got %q", c.OllamaURL)
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		return errors.New("model must not be empty")
	}
	if strings.TrimSpace(c.EmbedModel) == "" {
		return errors.New("embed_model must not be empty")
	}
	if c.TopK < 1 {
		return errors.New("top_k must be >= 1")
	}
	if c.MaxHistory < 1 {
		return errors.New("max_history must be >= 1")
	}
	return nil
}
