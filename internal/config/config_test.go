package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BASE_URL", "https://forms.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != "https://forms.example.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.Server.BaseURL)
	}
	if cfg.JWT.Expiry != 12*time.Hour {
		t.Errorf("JWT.Expiry = %v, want 12h", cfg.JWT.Expiry)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should be disabled by default")
	}
	if cfg.Server.Location().String() != "America/Sao_Paulo" {
		t.Errorf("Location() = %v", cfg.Server.Location())
	}
}

func TestSupabaseURLBecomesRestEndpoint(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgrest")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_KEY", "anon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.PostgRESTURL != "https://abc.supabase.co/rest/v1" {
		t.Errorf("PostgRESTURL = %q", cfg.Storage.PostgRESTURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgrest without url", map[string]string{"STORAGE_DRIVER": "postgrest", "SUPABASE_URL": "", "POSTGREST_URL": ""}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"default secret in production", map[string]string{"STORAGE_DRIVER": "memory", "ENVIRONMENT": "production", "SECRET_KEY": ""}},
		{"email without key", map[string]string{"STORAGE_DRIVER": "memory", "EMAIL_ENABLED": "true", "RESEND_API_KEY": ""}},
		{"bad timezone", map[string]string{"STORAGE_DRIVER": "memory", "TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
