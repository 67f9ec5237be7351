package ai

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EmbeddingHost == "" || cfg.GeneratorHost == "" {
		t.Error("DefaultConfig() returned empty hosts")
	}
	if cfg.EmbeddingModel == "" || cfg.GeneratorModel == "" {
		t.Error("DefaultConfig() returned empty models")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() not valid: %v", err)
	}
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithGeneratorModel("gpt-4o-mini"),
	)

	if cfg.EmbeddingHost != "http://localhost:9100" {
		t.Errorf("EmbeddingHost = %q", cfg.EmbeddingHost)
	}
	if cfg.GeneratorHost != "http://localhost:9100" {
		t.Errorf("GeneratorHost = %q", cfg.GeneratorHost)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
	if cfg.GeneratorModel != "gpt-4o-mini" {
		t.Errorf("GeneratorModel = %q", cfg.GeneratorModel)
	}
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "already normalized", host: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
		{name: "empty stays empty", host: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, GeneratorHost: tt.host}
			cfg.Normalize()
			if cfg.EmbeddingHost != tt.want {
				t.Errorf("EmbeddingHost = %q, want %q", cfg.EmbeddingHost, tt.want)
			}
			if cfg.GeneratorHost != tt.want {
				t.Errorf("GeneratorHost = %q, want %q", cfg.GeneratorHost, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, wantErr: true},
		{name: "missing generator host", mutate: func(c *Config) { c.GeneratorHost = "" }, wantErr: true},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, wantErr: true},
		{name: "missing generator model", mutate: func(c *Config) { c.GeneratorModel = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
