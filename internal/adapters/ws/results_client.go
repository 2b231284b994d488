// Package ws streams summary records to a results collector over a websocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"browserperf/internal/core/auth"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 5 * time.Second
)

var ErrUnauthorized = errors.New("connection failed: unauthorized")

// Message is the envelope written for each record.
type Message struct {
	Event   string               `json:"event"`
	Payload domain.SummaryRecord `json:"payload"`
}

const EventCPUSummary = "cpu:summary"

type ResultsClient struct {
	url    string
	signer *auth.Signer
	log    logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewResultsClient(url string, signer *auth.Signer, log logger.Logger) *ResultsClient {
	return &ResultsClient{url: url, signer: signer, log: log}
}

// Submit dials on first use and writes one text message per record.
func (c *ResultsClient) Submit(ctx context.Context, record domain.SummaryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.dial(ctx); err != nil {
			return err
		}
	}

	data, err := json.Marshal(Message{Event: EventCPUSummary, Payload: record})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to write record: %w", err)
	}

	c.log.Debug("results: record streamed", "test", record.Test)

	return nil
}

func (c *ResultsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scenario finished"),
	)

	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *ResultsClient) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	header := make(http.Header)
	token, err := c.signer.Token(time.Now())
	if err != nil {
		return err
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, res, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	c.conn = conn
	c.log.Info("results: connected to collector", "url", c.url)

	return nil
}
