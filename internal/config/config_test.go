package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "dormitory.db" {
		t.Errorf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Errorf("unexpected ollama url: %s", cfg.OllamaURL)
	}
	if cfg.ChatModel != "llama3.1" {
		t.Errorf("unexpected model: %s", cfg.ChatModel)
	}
	if cfg.MaxHistory != 10 || cfg.TopK != 5 {
		t.Errorf("unexpected retrieval bounds: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://ollama.internal:11434")
	t.Setenv("MODEL", "llama3.2")
	t.Setenv("DORMMCP_DB", "test.db")
	t.Setenv("DORMMCP_MAX_HISTORY", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OllamaURL != "http://ollama.internal:11434" {
		t.Errorf("env OLLAMA_URL not applied: %s", cfg.OllamaURL)
	}
	if cfg.ChatModel != "llama3.2" {
		t.Errorf("env MODEL not applied: %s", cfg.ChatModel)
	}
	if cfg.DBPath != "test.db" {
		t.Errorf("env DORMMCP_DB not applied: %s", cfg.DBPath)
	}
	if cfg.MaxHistory != 3 {
		t.Errorf("env DORMMCP_MAX_HISTORY not applied: %d", cfg.MaxHistory)
	}
}

func TestLoad_TOMLFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dormmcp.toml")
	body := "db_path = \"file.db\"\nmodel = \"file-model\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MODEL", "env-model")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "file.db" {
		t.Errorf("toml db_path not applied: %s", cfg.DBPath)
	}
	if cfg.ChatModel != "env-model" {
		t.Errorf("env must take precedence over file, got %s", cfg.ChatModel)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db", func(c *Config) { c.DBPath = " " }},
		{"bad listen", func(c *Config) { c.ListenAddr = "nope" }},
		{"relative mcp path", func(c *Config) { c.MCPPath = "mcp" }},
		{"bad ollama url", func(c *Config) { c.OllamaURL = "not a url" }},
		{"zero top_k", func(c *Config) { c.TopK = 0 }},
		{"zero history", func(c *Config) { c.MaxHistory = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}
