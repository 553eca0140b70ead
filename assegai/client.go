package assegai

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
	"github.com/AssegaiLabs/assegailabs-sdk/internal/transport"
	"github.com/AssegaiLabs/assegailabs-sdk/pkg/logger"
)

// DefaultProxyURL is where the host proxy listens for agents running inside
// the local sandbox.
const DefaultProxyURL = "http://localhost:8484"

// Environment variables consulted by New. Explicit options take precedence.
const (
	EnvProxyURL   = "ASSEGAI_PROXY_URL"
	EnvAgentID    = "ASSEGAI_AGENT_ID"
	EnvAgentToken = "ASSEGAI_AGENT_TOKEN"
)

// Client is a configured connection to the host proxy. Its settings are fixed
// at construction time; a Client is safe for concurrent use.
type Client struct {
	proxyURL   string
	agentID    string
	agentToken string
	timeout    time.Duration
	debug      bool
	httpClient *http.Client
	log        *slog.Logger

	transport *transport.Transport
}

// Option configures optional Client behaviour.
type Option func(*Client)

// WithProxyURL overrides the proxy base URL from the environment.
func WithProxyURL(rawURL string) Option {
	return func(c *Client) {
		c.proxyURL = rawURL
	}
}

// WithAgentID overrides the agent identity from the environment.
func WithAgentID(id string) Option {
	return func(c *Client) {
		c.agentID = id
	}
}

// WithAgentToken overrides the agent token from the environment.
func WithAgentToken(token string) Option {
	return func(c *Client) {
		c.agentToken = token
	}
}

// WithTimeout sets the per-request timeout. Transaction requests wait for a
// human or policy approval on the proxy side, so callers submitting
// transactions usually want several minutes here.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			c.timeout = 0
			return
		}
		c.timeout = timeout
	}
}

// WithDebug enables a trace log line for every outgoing request.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger routes the client's own log output through the given logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New builds a Client from the environment and the given options. It fails
// with an UNAUTHORIZED error when either credential is missing, and it never
// touches the network: reachability is only observable per call.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		proxyURL:   os.Getenv(EnvProxyURL),
		agentID:    os.Getenv(EnvAgentID),
		agentToken: os.Getenv(EnvAgentToken),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.proxyURL == "" {
		c.proxyURL = DefaultProxyURL
	}
	if c.agentID == "" || c.agentToken == "" {
		return nil, xerrors.New(xerrors.CodeUnauthorized, "agent credentials are not configured")
	}
	if c.log == nil {
		c.log = logger.Named("assegai")
	}

	tp, err := transport.New(transport.Config{
		BaseURL:    c.proxyURL,
		AgentID:    c.agentID,
		AgentToken: c.agentToken,
		Timeout:    c.timeout,
		Debug:      c.debug,
		HTTPClient: c.httpClient,
		Logger:     c.log,
	})
	if err != nil {
		return nil, err
	}
	c.transport = tp
	return c, nil
}

// AgentID returns the identity the client authenticates as.
func (c *Client) AgentID() string {
	return c.agentID
}

// IsConfigured reports whether both credentials are present.
func (c *Client) IsConfigured() bool {
	return c.agentID != "" && c.agentToken != ""
}

// Health reports whether the proxy is reachable. The probe is
// unauthenticated and any failure, however caused, reads as not healthy.
func (c *Client) Health(ctx context.Context) bool {
	err := c.transport.Send(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/health",
		NoAuth: true,
	}, nil)
	return err == nil
}
