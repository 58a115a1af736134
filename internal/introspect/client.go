// Package introspect acquires a GraphQL schema, either from a live endpoint
// through the introspection query or from a schema file on disk.
package introspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/gqlorm/gqlorm/internal/schema"
)

// DefaultTimeout bounds a whole introspection round trip.
const DefaultTimeout = 30 * time.Second

// Auth holds OAuth2 client credentials. When set, requests carry a bearer
// token fetched from TokenURL.
type Auth struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Request describes one introspection call.
type Request struct {
	URL     string
	Headers map[string]string
	Auth    *Auth
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client runs the introspection query against GraphQL endpoints.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates an introspection client.
func NewClient(opts ...Option) *Client {
	c := &Client{httpClient: http.DefaultClient, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "introspect").Logger()
	return c
}

type queryBody struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
}

type response struct {
	Data *struct {
		Schema *schema.Introspection `json:"__schema"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch posts the introspection query and decodes the `__schema` object.
func (c *Client) Fetch(ctx context.Context, req Request) (*schema.Introspection, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("introspection url is empty")
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(queryBody{Query: Query, OperationName: "IntrospectionQuery"})
	if err != nil {
		return nil, fmt.Errorf("failed to encode introspection query: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid introspection url %q: %w", req.URL, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug().Str("url", req.URL).Int("headers", len(req.Headers)).Bool("oauth2", req.Auth != nil).Msg("sending introspection query")

	start := time.Now()
	resp, err := c.client(ctx, req.Auth).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach GraphQL endpoint %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("introspection response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read introspection response: %w", err)
	}
	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		gqlErr := &GraphQLErrors{}
		for _, e := range decoded.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return nil, gqlErr
	}
	if decoded.Data == nil || decoded.Data.Schema == nil {
		return nil, ErrNoData
	}

	c.logger.Info().Str("url", req.URL).Int("types", len(decoded.Data.Schema.Types)).Msg("schema introspected")
	return decoded.Data.Schema, nil
}

// Load fetches the schema and normalizes it into a SchemaGraph.
func (c *Client) Load(ctx context.Context, req Request) (*schema.SchemaGraph, error) {
	in, err := c.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return schema.Build(schema.Source{Introspection: in})
}

func (c *Client) client(ctx context.Context, auth *Auth) *http.Client {
	if auth == nil {
		return c.httpClient
	}
	cfg := clientcredentials.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		TokenURL:     auth.TokenURL,
		Scopes:       auth.Scopes,
	}
	// The token endpoint is reached through the same transport.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return cfg.Client(ctx)
}
