package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string, values map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(values)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExecuteFlushesLogOnError(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "ovtd.log")
	path := writeConfig(t, dir, map[string]interface{}{
		"provider_mode":   "live",
		"provider_url":    "http://127.0.0.1:1",
		"request_timeout": 500,
		"retries":         0,
		"listen_addr":     "127.0.0.1:0",
		"log_file":        logFile,
	})

	code := execute(context.Background(), path)
	assert.Equal(t, 1, code)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ovtd stopped with error")
}

func TestExecuteBadConfig(t *testing.T) {
	assert.Equal(t, 1, execute(context.Background(), filepath.Join(t.TempDir(), "missing.json")))
}

func TestExecuteStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "ovtd.log")
	path := writeConfig(t, dir, map[string]interface{}{
		"provider_mode": "mock",
		"listen_addr":   "127.0.0.1:0",
		"log_file":      logFile,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- execute(ctx, path) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("ovtd did not stop")
	}

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ovtd stopped")
}
