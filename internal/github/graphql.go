package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint
const DefaultGraphQLURL = "https://api.github.com/graphql"

const userAgent = "portfolio-contributions/1.0"

// GraphQLClient handles GitHub GraphQL API requests
type GraphQLClient struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// Option configures a GraphQLClient
type Option func(*GraphQLClient)

// WithEndpoint points the client at a different GraphQL URL
func WithEndpoint(endpoint string) Option {
	return func(c *GraphQLClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout sets the transport timeout. This is the only timeout a fetch is subject to.
func WithTimeout(d time.Duration) Option {
	return func(c *GraphQLClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GraphQLClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewGraphQLClient creates a new GraphQL client. An empty token is not
// rejected; the provider reports it as a GraphQL error.
func NewGraphQLClient(token string, opts ...Option) *GraphQLClient {
	c := &GraphQLClient{
		token:    token,
		endpoint: DefaultGraphQLURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// doQuery executes a GraphQL query. Transport failures and non-2xx statuses
// come back as *NetworkError; a reported errors array or an unparseable
// body comes back as *DataError.
func (c *GraphQLClient) doQuery(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var gqlResp GraphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, &DataError{Message: "failed to parse response", Err: err}
	}

	if len(gqlResp.Errors) > 0 {
		return nil, &DataError{Message: gqlResp.Errors[0].Message, Errors: gqlResp.Errors}
	}

	return &gqlResp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
