package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browserperf/internal/core/auth"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

func TestResultsClientStreamsInOrder(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan Message, 3)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg Message
			if assert.NoError(t, json.Unmarshal(data, &msg)) {
				received <- msg
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client := NewResultsClient(url, auth.NewSigner("secret", time.Minute, "run-1"), logger.Nop())

	for _, stat := range []string{domain.StatAvg, domain.StatMin, domain.StatMax} {
		require.NoError(t, client.Submit(context.Background(), domain.NewCPURecord("scn", stat, 1)))
	}

	for _, want := range []string{"scn-avg", "scn-min", "scn-max"} {
		select {
		case msg := <-received:
			assert.Equal(t, EventCPUSummary, msg.Event)
			assert.Equal(t, want, msg.Payload.Test)
		case <-time.After(2 * time.Second):
			t.Fatalf("no message for %s", want)
		}
	}

	assert.NoError(t, client.Close())
}

func TestResultsClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewResultsClient("ws"+strings.TrimPrefix(srv.URL, "http"), nil, logger.Nop())

	err := client.Submit(context.Background(), domain.NewCPURecord("scn", domain.StatAvg, 1))
	assert.ErrorIs(t, err, ErrUnauthorized)
}
