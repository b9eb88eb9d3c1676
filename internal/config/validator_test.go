package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := &Config{
		General: &GeneralConfig{},
		Sources: []*SourceConfig{
			{Name: "src-one", URL: "https://example.com/one.txt"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidateConfig_Success(t *testing.T) {
	if err := validTestConfig().ValidateConfig(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestValidateConfig_MissingGeneral(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for missing general section")
	}
}

func TestValidateConfig_UnknownBackend(t *testing.T) {
	cfg := validTestConfig()
	cfg.General.Backend = "pf"

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "general.backend") {
		t.Errorf("Expected general.backend in error, got: %v", err)
	}
}

func TestValidateConfig_BadTableName(t *testing.T) {
	tests := []string{"9starts-with-digit", "Upper", "has space", "-leading-dash"}

	for _, name := range tests {
		cfg := validTestConfig()
		cfg.General.TableName = name
		if err := cfg.ValidateConfig(); err == nil {
			t.Errorf("Expected error for table name %q", name)
		}
	}
}

func TestValidateConfig_BadProxy(t *testing.T) {
	cfg := validTestConfig()
	cfg.General.Proxy = "ftp://proxy.example.com"
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for unsupported proxy scheme")
	}

	cfg = validTestConfig()
	cfg.General.Proxy = "socks5://127.0.0.1:1080"
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected socks5 proxy to be accepted, got: %v", err)
	}
}

func TestValidateConfig_SourceRequiresNameAndURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.Sources = append(cfg.Sources, &SourceConfig{URL: "https://example.com/two.txt"})
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for source without name")
	}

	cfg = validTestConfig()
	cfg.Sources = append(cfg.Sources, &SourceConfig{Name: "src-two", URL: "not a url"})
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for source with invalid URL")
	}
}

func TestValidateConfig_DuplicateSourceNames(t *testing.T) {
	cfg := validTestConfig()
	cfg.Sources = append(cfg.Sources, &SourceConfig{Name: "src-one", URL: "https://example.com/two.txt"})

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected error for duplicate source names")
	}
	if !strings.Contains(err.Error(), "duplicate source name") {
		t.Errorf("Expected duplicate name message, got: %v", err)
	}
}

func TestValidateConfig_ResolveHostnamesRequiresResolver(t *testing.T) {
	cfg := validTestConfig()
	cfg.Sources[0].ResolveHostnames = true

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected error for resolve_hostnames without resolver")
	}
	if !strings.Contains(err.Error(), "general.resolver") {
		t.Errorf("Expected general.resolver message, got: %v", err)
	}

	cfg.General.Resolver = "192.0.2.53"
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected no error with resolver set, got: %v", err)
	}
}

func TestValidateConfig_APIRequiresListenWhenEnabled(t *testing.T) {
	cfg := validTestConfig()
	cfg.API = &APIConfig{Enabled: true}
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for enabled API without listen address")
	}

	cfg.API.Listen = "127.0.0.1:8787"
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected no error with listen set, got: %v", err)
	}
}

func TestValidateConfig_RuleChain(t *testing.T) {
	cfg := validTestConfig()
	cfg.Rules = []*ExtraRule{{Chain: "forward", Expr: "accept"}}
	if err := cfg.ValidateConfig(); err == nil {
		t.Error("Expected error for unsupported rule chain")
	}

	cfg.Rules = []*ExtraRule{{Chain: "input", Expr: "accept"}}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected input chain to be accepted, got: %v", err)
	}
}

func TestValidateConfig_CollectsAllErrors(t *testing.T) {
	cfg := validTestConfig()
	cfg.General.Backend = "pf"
	cfg.General.BatchSize = -1
	cfg.Sources = append(cfg.Sources, &SourceConfig{Name: "src-one", URL: "https://example.com/two.txt"})

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	ve, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}
	if len(ve) < 3 {
		t.Errorf("Expected at least 3 errors collected, got %d: %v", len(ve), ve)
	}
}
