/*
This file contains the shared GraphQL client for the Uniswap V3 subgraph.

Every fetcher in this package goes through Execute, which handles request
encoding, retries with linear backoff, HTTP status validation, and the
GraphQL errors array. Callers only supply a query and a destination struct.
*/

package datafetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/poolparty/advisor/internal/logger"
)

var subgraphLogger = logger.GetForComponent("subgraph_client")

var ErrSubgraphUnavailable = errors.New("subgraph request failed after all retries")
var ErrInvalidSubgraphData = errors.New("invalid subgraph response data")

const (
	MAX_RETRIES     = 3
	TIMEOUT_SECONDS = 30
)

// SubgraphClient issues GraphQL queries against a single subgraph endpoint.
type SubgraphClient struct {
	url    string
	client *http.Client
}

// NewSubgraphClient creates a client for the given GraphQL endpoint.
func NewSubgraphClient(url string) *SubgraphClient {
	return &SubgraphClient{
		url: url,
		client: &http.Client{
			Timeout: TIMEOUT_SECONDS * time.Second,
		},
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Execute posts a GraphQL query and decodes the data payload into out.
// Retries transient failures up to MAX_RETRIES times with linear backoff.
func (c *SubgraphClient) Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		subgraphLogger.Debug().
			Int("attempt", attempt).
			Int("maxRetries", MAX_RETRIES).
			Msg("Sending subgraph request")

		err := c.executeOnce(ctx, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		subgraphLogger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Subgraph request failed, will retry if attempts remain")

		if attempt < MAX_RETRIES {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	subgraphLogger.Error().
		Err(lastErr).
		Int("maxRetries", MAX_RETRIES).
		Msg("All subgraph retry attempts failed")
	return fmt.Errorf("%w: %v", ErrSubgraphUnavailable, lastErr)
}

func (c *SubgraphClient) executeOnce(ctx context.Context, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty response body", ErrInvalidSubgraphData)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubgraphData, err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSubgraphData, gqlResp.Errors[0].Message)
	}
	if len(gqlResp.Data) == 0 {
		return fmt.Errorf("%w: missing data field", ErrInvalidSubgraphData)
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubgraphData, err)
	}
	return nil
}
