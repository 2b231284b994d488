// Package http
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"browserperf/internal/core/auth"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

const maxErrorBody = 1024

// ResultsClient posts summary records to the harness control server.
type ResultsClient struct {
	url    string
	client *http.Client
	signer *auth.Signer
	log    logger.Logger
}

func NewResultsClient(url string, signer *auth.Signer, log logger.Logger) *ResultsClient {
	return &ResultsClient{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		signer: signer,
		log:    log,
	}
}

func (c *ResultsClient) Submit(ctx context.Context, record domain.SummaryRecord) error {
	if errs := ValidateStruct(record); len(errs) > 0 {
		return fmt.Errorf("invalid record %s: %v", record.Test, errs)
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.signer.Token(time.Now())
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("results request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return fmt.Errorf("results endpoint returned %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}

	_, _ = io.Copy(io.Discard, res.Body)
	c.log.Debug("results: record posted", "test", record.Test, "status", res.StatusCode)

	return nil
}
