package assegai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
)

func TestRequestTransactionValidatesLocally(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := client.RequestTransaction(ctx, TransactionRequest{
		To:    "0x52908400098527886E0F7030069857D2E4169EE7",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for missing chain, got %v", err)
	}

	_, err = client.RequestTransaction(ctx, TransactionRequest{
		Chain: "eip155:1",
		To:    "not-an-address",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for malformed address, got %v", err)
	}

	_, err = client.RequestTransaction(ctx, TransactionRequest{
		Chain: "eip155:1",
		To:    "0x1234",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for short address, got %v", err)
	}

	_, err = client.RequestTransaction(ctx, TransactionRequest{
		Chain: "eip155:1",
		To:    "52908400098527886E0F7030069857D2E4169EE7",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for missing 0x prefix, got %v", err)
	}

	_, err = client.RequestTransaction(ctx, TransactionRequest{
		Chain: "eip155:1",
		To:    "0x52908400098527886E0F7030069857D2E4169EE7",
	})
	if xerrors.CodeOf(err) != xerrors.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for missing value, got %v", err)
	}

	if hit {
		t.Fatal("invalid requests must not reach the proxy")
	}
}

func TestRequestTransactionAppliesDefaults(t *testing.T) {
	var captured TransactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/request-transaction" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "txHash": "0xabc123"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.RequestTransaction(context.Background(), TransactionRequest{
		Chain: "eip155:1",
		To:    "0x52908400098527886E0F7030069857D2E4169EE7",
		Value: "1000000000000000000",
	})
	if err != nil {
		t.Fatalf("request transaction: %v", err)
	}

	if captured.Data != "0x" {
		t.Fatalf("expected default data 0x, got %q", captured.Data)
	}
	if captured.GasLimit != "21000" {
		t.Fatalf("expected default gas limit 21000, got %q", captured.GasLimit)
	}
	if !result.Success || result.TxHash != "0xabc123" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRequestTransactionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Transaction rejected by user"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.RequestTransaction(context.Background(), TransactionRequest{
		Chain: "eip155:1",
		To:    "0x52908400098527886E0F7030069857D2E4169EE7",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeTransactionRejected {
		t.Fatalf("expected TRANSACTION_REJECTED, got %v", err)
	}
}

func TestRequestTransactionAllowanceExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "No spending allowances configured for this agent"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.RequestTransaction(context.Background(), TransactionRequest{
		Chain: "eip155:1",
		To:    "0x52908400098527886E0F7030069857D2E4169EE7",
		Value: "1",
	})
	if xerrors.CodeOf(err) != xerrors.CodeInsufficientAllowance {
		t.Fatalf("expected INSUFFICIENT_ALLOWANCE, got %v", err)
	}
}
