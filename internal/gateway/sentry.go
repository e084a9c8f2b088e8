// Sentry Web API client.
//
// The bridge acknowledges an issue upstream after its alert has been routed,
// so the monitor stops re-sending it. This is the only Sentry operation the
// core consumes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSentryAPIBase is the public Sentry API endpoint.
const DefaultSentryAPIBase = "https://sentry.io"

// SentryClient performs authenticated calls against the Sentry Web API.
// Safe for concurrent use.
type SentryClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewSentryClient constructs a client authenticated with authToken. baseURL
// may be empty to use sentry.io; self-hosted deployments and tests override it.
func NewSentryClient(baseURL, authToken string, timeout time.Duration) *SentryClient {
	if baseURL == "" {
		baseURL = DefaultSentryAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SentryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Acknowledge updates the status of issueID (e.g. "resolved") so the monitor
// stops redelivering its alerts. Single attempt; failures are wrapped in
// *GatewayError and logged at warn level.
func (c *SentryClient) Acknowledge(ctx context.Context, issueID, status string) error {
	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return &GatewayError{Op: "sentry.acknowledge", Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/api/0/issues/%s/", c.baseURL, issueID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Op: "sentry.acknowledge", Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("issue_id", issueID).Msg("acknowledge failed")
		return &GatewayError{Op: "sentry.acknowledge", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		log.Warn().Err(err).Str("issue_id", issueID).Msg("acknowledge failed")
		return &GatewayError{Op: "sentry.acknowledge", Err: err}
	}
	return nil
}
