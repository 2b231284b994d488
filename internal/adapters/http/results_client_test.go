package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browserperf/internal/core/auth"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

func TestResultsClientSubmit(t *testing.T) {
	signer := auth.NewSigner("secret", time.Minute, "run-1")

	type request struct {
		body    string
		subject string
	}
	got := make(chan request, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		sub, err := signer.Verify(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		assert.NoError(t, err)

		b, _ := io.ReadAll(r.Body)
		got <- request{body: string(b), subject: sub}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewResultsClient(srv.URL, signer, logger.Nop())

	err := client.Submit(context.Background(), domain.NewCPURecord("cpuunittest", domain.StatAvg, 46.85))
	require.NoError(t, err)

	req := <-got
	assert.JSONEq(t, `{"type":"cpu","test":"cpuunittest-avg","unit":"%","values":{"avg":46.85}}`, req.body)
	assert.Equal(t, "run-1", req.subject)
}

func TestResultsClientRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewResultsClient(srv.URL, nil, logger.Nop())

	err := client.Submit(context.Background(), domain.NewCPURecord("s", domain.StatMin, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "storage full")
}

func TestResultsClientNoAuthWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var rec domain.SummaryRecord
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "s-max", rec.Test)
	}))
	defer srv.Close()

	client := NewResultsClient(srv.URL, nil, logger.Nop())
	require.NoError(t, client.Submit(context.Background(), domain.NewCPURecord("s", domain.StatMax, 8)))
}

func TestResultsClientRejectsInvalidRecord(t *testing.T) {
	client := NewResultsClient("http://127.0.0.1:0", nil, logger.Nop())

	err := client.Submit(context.Background(), domain.SummaryRecord{Type: "memory", Test: "s-avg", Unit: "%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid record")
}
