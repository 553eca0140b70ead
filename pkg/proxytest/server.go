// Package proxytest runs an in-process stand-in for the host proxy so agent
// code can be exercised without a sandbox, a wallet, or provider API keys.
// The fake keeps every canned answer and every recorded request in memory
// and is safe for concurrent use.
package proxytest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/AssegaiLabs/assegailabs-sdk/pkg/logger"
)

// Default credentials accepted by a server constructed without
// WithCredentials.
const (
	DefaultAgentID    = "test-agent"
	DefaultAgentToken = "test-token"
)

// LogRecord is one forwarded agent log line.
type LogRecord struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// TransactionRecord is one accepted transaction request together with the
// hash the fake assigned to it.
type TransactionRecord struct {
	Chain    string `json:"chain"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	GasLimit string `json:"gasLimit"`
	TxHash   string `json:"txHash"`
}

// Server is a fake host proxy listening on a loopback port.
type Server struct {
	agentID    string
	agentToken string
	log        *slog.Logger

	mu           sync.Mutex
	wallets      map[string]string
	results      map[string]any
	rejectWith   string
	claudeReply  string
	openaiReply  string
	rateLimit    int
	requestCount int
	logs         []LogRecord
	transactions []TransactionRecord

	httpSrv *httptest.Server
}

// Option configures the fake before it starts serving.
type Option func(*Server)

// WithCredentials sets the agent credentials the fake accepts.
func WithCredentials(id, token string) Option {
	return func(s *Server) {
		s.agentID = id
		s.agentToken = token
	}
}

// WithWallet registers a wallet address for a chain.
func WithWallet(chain, address string) Option {
	return func(s *Server) {
		s.wallets[chain] = address
	}
}

// WithResult sets the canned result for a read-only RPC method.
func WithResult(method string, result any) Option {
	return func(s *Server) {
		s.results[method] = result
	}
}

// WithRejection makes every transaction request fail with the given error
// message, the way a declined approval does.
func WithRejection(message string) Option {
	return func(s *Server) {
		s.rejectWith = message
	}
}

// WithClaudeReply sets the text the fake Anthropic relay answers with.
func WithClaudeReply(text string) Option {
	return func(s *Server) {
		s.claudeReply = text
	}
}

// WithOpenAIReply sets the text the fake OpenAI relay answers with.
func WithOpenAIReply(text string) Option {
	return func(s *Server) {
		s.openaiReply = text
	}
}

// WithRateLimit rejects every authenticated request after the first n with a
// 429 and a Retry-After header.
func WithRateLimit(n int) Option {
	return func(s *Server) {
		s.rateLimit = n
	}
}

// New starts a fake proxy. Callers own the returned server and must Close it.
func New(opts ...Option) *Server {
	s := &Server{
		agentID:    DefaultAgentID,
		agentToken: DefaultAgentToken,
		log:        logger.Named("proxytest"),
		wallets:    map[string]string{},
		results: map[string]any{
			"eth_blockNumber":         "0x10",
			"eth_gasPrice":            "0x3b9aca00",
			"eth_getBalance":          "0xde0b6b3a7640000",
			"eth_getTransactionCount": "0x0",
			"eth_getCode":             "0x",
		},
		claudeReply: "This is a canned reply.",
		openaiReply: "This is a canned reply.",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/agent/wallet-address/", s.authenticated(s.handleWalletAddress))
	mux.HandleFunc("/agent/query-chain", s.authenticated(s.handleQueryChain))
	mux.HandleFunc("/agent/request-transaction", s.authenticated(s.handleRequestTransaction))
	mux.HandleFunc("/agent/log", s.authenticated(s.handleLog))
	mux.HandleFunc("/api/anthropic/v1/messages", s.authenticated(s.handleClaude))
	mux.HandleFunc("/api/openai/v1/chat/completions", s.authenticated(s.handleOpenAI))

	s.httpSrv = httptest.NewServer(mux)
	return s
}

// URL returns the base URL agents should point their client at.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// AgentID returns the accepted agent identity.
func (s *Server) AgentID() string {
	return s.agentID
}

// AgentToken returns the accepted agent token.
func (s *Server) AgentToken() string {
	return s.agentToken
}

// SetResult replaces the canned result for an RPC method on a running fake.
func (s *Server) SetResult(method string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[method] = result
}

// Logs returns a copy of every forwarded log line, oldest first.
func (s *Server) Logs() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogRecord, len(s.logs))
	copy(out, s.logs)
	return out
}

// Transactions returns a copy of every accepted transaction, oldest first.
func (s *Server) Transactions() []TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TransactionRecord, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// authenticated wraps a handler with the credential check and the rate
// limiter that the real proxy applies to agent endpoints.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Agent-Id") != s.agentID || r.Header.Get("X-Agent-Token") != s.agentToken {
			s.log.Warn("rejected credentials", "path", r.URL.Path, "method", r.Method)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid agent credentials"})
			return
		}

		s.mu.Lock()
		s.requestCount++
		limited := s.rateLimit > 0 && s.requestCount > s.rateLimit
		s.mu.Unlock()
		if limited {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "Rate limit exceeded"})
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		s.log.Debug("handled request", "method", r.Method, "path", r.URL.Path, "status", sw.status)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleWalletAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		return
	}
	chain := strings.TrimPrefix(r.URL.Path, "/agent/wallet-address/")
	s.mu.Lock()
	address, ok := s.wallets[chain]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("No wallet address found for chain %s", chain)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"address": address})
}

func (s *Server) handleQueryChain(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Chain  string `json:"chain"`
		Method string `json:"method"`
		Params []any  `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed query payload"})
		return
	}
	s.mu.Lock()
	result, ok := s.results[query.Method]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": fmt.Sprintf("RPC Error: the method %s does not exist", query.Method)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *Server) handleRequestTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Chain    string `json:"chain"`
		To       string `json:"to"`
		Value    string `json:"value"`
		Data     string `json:"data"`
		GasLimit string `json:"gasLimit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed transaction payload"})
		return
	}
	s.mu.Lock()
	rejectWith := s.rejectWith
	s.mu.Unlock()
	if rejectWith != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": rejectWith})
		return
	}

	hash := newTxHash()
	s.mu.Lock()
	s.transactions = append(s.transactions, TransactionRecord{
		Chain:    req.Chain,
		To:       req.To,
		Value:    req.Value,
		Data:     req.Data,
		GasLimit: req.GasLimit,
		TxHash:   hash,
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "txHash": hash})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var entry LogRecord
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed log payload"})
		return
	}
	s.mu.Lock()
	s.logs = append(s.logs, entry)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleClaude(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed messages payload"})
		return
	}
	s.mu.Lock()
	reply := s.claudeReply
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          "msg_" + uuid.NewString(),
		"type":        "message",
		"role":        "assistant",
		"model":       req.Model,
		"stop_reason": "end_turn",
		"content": []map[string]any{
			{"type": "text", "text": reply},
		},
		"usage": map[string]any{"input_tokens": 1, "output_tokens": 1},
	})
}

func (s *Server) handleOpenAI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Malformed completion payload"})
		return
	}
	s.mu.Lock()
	reply := s.openaiReply
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     "chatcmpl-" + uuid.NewString(),
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			},
		},
	})
}

// newTxHash fabricates a 32-byte transaction hash.
func newTxHash() string {
	a, b := uuid.New(), uuid.New()
	return hexutil.Encode(append(a[:], b[:]...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusWriter captures the response status for the request log line.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
