package assegai

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogForwardsToProxy(t *testing.T) {
	var captured struct {
		Level   string         `json:"level"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/log" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Agent-Id") != "a1" {
			t.Fatal("log forwarding must be authenticated")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode log entry: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	client.Log(context.Background(), LogWarn, "allowance nearly spent", map[string]any{"remaining": 42})

	if captured.Level != "warn" {
		t.Fatalf("unexpected level: %q", captured.Level)
	}
	if captured.Message != "allowance nearly spent" {
		t.Fatalf("unexpected message: %q", captured.Message)
	}
	if captured.Data["remaining"] != float64(42) {
		t.Fatalf("unexpected data: %v", captured.Data)
	}
}

func TestLogSurvivesProxyOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	var buf bytes.Buffer
	client, err := New(
		WithProxyURL(base),
		WithAgentID("a1"),
		WithAgentToken("t1"),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	client.Log(context.Background(), LogInfo, "agent started", nil)

	output := buf.String()
	if !strings.Contains(output, "agent started") {
		t.Fatalf("expected the line on the local logger, got %q", output)
	}
	if !strings.Contains(output, "failed to forward log to proxy") {
		t.Fatalf("expected a forwarding warning, got %q", output)
	}
}
