package assegai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
)

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv(EnvProxyURL, "")
	t.Setenv(EnvAgentID, "")
	t.Setenv(EnvAgentToken, "")

	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	_, err := New(WithProxyURL(srv.URL))
	if xerrors.CodeOf(err) != xerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	_, err = New(WithProxyURL(srv.URL), WithAgentID("a1"))
	if xerrors.CodeOf(err) != xerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED without token, got %v", err)
	}
	if hit {
		t.Fatal("construction must not touch the network")
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv(EnvProxyURL, "http://localhost:9999")
	t.Setenv(EnvAgentID, "env-agent")
	t.Setenv(EnvAgentToken, "env-token")

	client, err := New()
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.AgentID() != "env-agent" {
		t.Fatalf("unexpected agent id: %q", client.AgentID())
	}
	if !client.IsConfigured() {
		t.Fatal("expected a configured client")
	}
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv(EnvProxyURL, "http://localhost:9999")
	t.Setenv(EnvAgentID, "env-agent")
	t.Setenv(EnvAgentToken, "env-token")

	client, err := New(WithAgentID("opt-agent"), WithAgentToken("opt-token"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.AgentID() != "opt-agent" {
		t.Fatalf("option did not override environment: %q", client.AgentID())
	}
}

func TestHealth(t *testing.T) {
	var captured http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		captured = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(WithProxyURL(srv.URL), WithAgentID("a1"), WithAgentToken("t1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if !client.Health(context.Background()) {
		t.Fatal("expected a healthy proxy")
	}
	if captured.Get("X-Agent-Id") != "" {
		t.Fatal("health probe must be unauthenticated")
	}

	srv.Close()
	if client.Health(context.Background()) {
		t.Fatal("expected an unreachable proxy to read as unhealthy")
	}
}
