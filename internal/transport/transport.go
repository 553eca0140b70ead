// Package transport implements the authenticated HTTP core every SDK
// operation funnels through: one request envelope in, decoded JSON or a
// classified taxonomy error out.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
	"github.com/AssegaiLabs/assegailabs-sdk/pkg/logger"
)

// DefaultTimeout bounds every proxy call unless the client overrides it.
// Transaction approval flows can run longer than this; callers raise the
// timeout when they expect a human in the loop.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error reply is read for classification.
const maxErrorBody = 64 << 10

const (
	headerAgentID    = "X-Agent-Id"
	headerAgentToken = "X-Agent-Token"
	headerRequestID  = "X-Request-Id"
)

// Config carries everything the transport needs; the facade owns validation
// of the credential fields.
type Config struct {
	BaseURL    string
	AgentID    string
	AgentToken string
	Timeout    time.Duration
	Debug      bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Transport performs JSON request/response calls against the host proxy.
// It is safe for concurrent use; all fields are set once at construction.
type Transport struct {
	baseURL    *url.URL
	agentID    string
	agentToken string
	timeout    time.Duration
	debug      bool
	httpClient *http.Client
	log        *slog.Logger
}

// Request is the outbound envelope for a single proxy call.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
	NoAuth bool
}

// New builds a transport from the given configuration.
func New(cfg Config) (*Transport, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeValidationError, err, fmt.Sprintf("invalid proxy URL %q", cfg.BaseURL))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, xerrors.New(xerrors.CodeValidationError, fmt.Sprintf("invalid proxy URL %q", cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("transport")
	}

	return &Transport{
		baseURL:    parsed,
		agentID:    cfg.AgentID,
		agentToken: cfg.AgentToken,
		timeout:    timeout,
		debug:      cfg.Debug,
		httpClient: httpClient,
		log:        log,
	}, nil
}

// Get performs an authenticated GET and decodes the JSON reply into out.
func (t *Transport) Get(ctx context.Context, endpoint string, out any) error {
	return t.Send(ctx, Request{Method: http.MethodGet, Path: endpoint}, out)
}

// Post performs an authenticated POST with a JSON body.
func (t *Transport) Post(ctx context.Context, endpoint string, body, out any) error {
	return t.Send(ctx, Request{Method: http.MethodPost, Path: endpoint, Body: body}, out)
}

// Send executes one proxy call. Every call owns an independent timeout; a 2xx
// reply is decoded into out (which may be nil), anything else is converted
// into a taxonomy error and never surfaced as success.
func (t *Transport) Send(ctx context.Context, req Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	httpReq, err := t.newRequest(ctx, req)
	if err != nil {
		return err
	}

	if t.debug {
		t.log.Debug("proxy request",
			"method", req.Method,
			"path", req.Path,
			"request_id", httpReq.Header.Get(headerRequestID),
		)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		if stdErrors.Is(err, context.DeadlineExceeded) {
			return xerrors.Wrap(xerrors.CodeTimeout, err,
				fmt.Sprintf("%s %s exceeded %s", req.Method, req.Path, t.timeout))
		}
		return xerrors.Wrap(xerrors.CodeNetworkError, err,
			fmt.Sprintf("%s %s failed", req.Method, req.Path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return t.responseError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return xerrors.Wrap(xerrors.CodeAPIError, err, "decode proxy response",
			xerrors.WithSubCode(resp.StatusCode))
	}
	return nil
}

func (t *Transport) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeValidationError, err, "encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	rel := &url.URL{Path: path.Join(t.baseURL.Path, req.Path)}
	u := t.baseURL.ResolveReference(rel)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeValidationError, err, "create request")
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	// Auth and content headers go last so caller headers cannot displace them.
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerRequestID, uuid.NewString())
	if !req.NoAuth {
		httpReq.Header.Set(headerAgentID, t.agentID)
		httpReq.Header.Set(headerAgentToken, t.agentToken)
	}
	return httpReq, nil
}

func (t *Transport) responseError(resp *http.Response) error {
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body map[string]any
	if readErr != nil || len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &body) != nil {
		body = map[string]any{"error": fmt.Sprintf("Request failed with status %d", resp.StatusCode)}
	}

	var opts []xerrors.Option
	if after := retryAfter(resp.Header); after > 0 {
		opts = append(opts, xerrors.WithRetryAfter(after))
	}
	return xerrors.Classify(resp.StatusCode, body, opts...)
}

func retryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
