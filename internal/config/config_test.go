package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load empty manifest: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Logging.OutputPaths) != 1 || cfg.Logging.OutputPaths[0] != "stdout" {
		t.Fatalf("unexpected output paths: %v", cfg.Logging.OutputPaths)
	}
	if cfg.Chains == nil {
		t.Fatal("expected an initialized chains map")
	}
}

func TestLoadParsesManifest(t *testing.T) {
	manifest := `
proxy:
  url: http://localhost:9000
  timeout_seconds: 120
  debug: true
agent:
  id: agent-7
  token: secret-7
logging:
  level: debug
chains:
  mainnet: eip155:1
  base: eip155:8453
`
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if cfg.Proxy.URL != "http://localhost:9000" || cfg.Proxy.TimeoutSeconds != 120 || !cfg.Proxy.Debug {
		t.Fatalf("unexpected proxy config: %+v", cfg.Proxy)
	}
	if cfg.Agent.ID != "agent-7" || cfg.Agent.Token != "secret-7" {
		t.Fatalf("unexpected agent config: %+v", cfg.Agent)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Chains["base"] != "eip155:8453" {
		t.Fatalf("unexpected chains: %v", cfg.Chains)
	}
}

func TestLoadRejectsMalformedManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte("proxy: [not a mapping"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestResolveChain(t *testing.T) {
	cfg := &Config{Chains: map[string]string{"mainnet": "eip155:1"}}

	id, err := cfg.ResolveChain("mainnet")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	if id != "eip155:1" {
		t.Fatalf("unexpected id: %q", id)
	}

	id, err = cfg.ResolveChain("eip155:8453")
	if err != nil {
		t.Fatalf("resolve literal id: %v", err)
	}
	if id != "eip155:8453" {
		t.Fatalf("unexpected id: %q", id)
	}

	if _, err := cfg.ResolveChain("goerli"); err == nil {
		t.Fatal("expected an error for an unknown alias")
	}
}
