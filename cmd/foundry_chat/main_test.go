package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"foundry_cli/pkg/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "test.log")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	return path
}

func TestCLIMain_Completion(t *testing.T) {
	var requests atomic.Int32
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl_1","model":"gpt-4","choices":[{"message":{"role":"assistant","content":"pong"}}]}`))
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--api-key", "test-key",
		"--model", "gpt-4",
		"--prompt", "ping",
		"--max-tokens", "5",
		"--temperature", "0",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if requests.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", requests.Load())
	}
	if !strings.HasSuffix(gotPath, "chat/completions") {
		t.Fatalf("expected completions path, got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api-key header, got %q", gotKey)
	}
	if gotBody["max_tokens"] != float64(5) {
		t.Fatalf("expected max_tokens 5, got %v", gotBody["max_tokens"])
	}

	out := stdout.String()
	if !strings.Contains(out, "Making inference request with model: gpt-4") {
		t.Errorf("missing request line in output: %q", out)
	}
	if !strings.Contains(out, "Prompt: ping") {
		t.Errorf("missing prompt line in output: %q", out)
	}
	if !strings.Contains(out, `"content": "pong"`) {
		t.Errorf("missing JSON response in output: %q", out)
	}
	if !strings.Contains(out, "Generated text:") {
		t.Errorf("missing generated text section in output: %q", out)
	}
	if !strings.Contains(out, "pong") {
		t.Errorf("missing reply text in output: %q", out)
	}
}

func TestCLIMain_EnvironmentFallback(t *testing.T) {
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl_1","model":"gpt-4","choices":[]}`))
	}))
	defer server.Close()

	t.Setenv("FOUNDRY_ENDPOINT", server.URL)
	t.Setenv("FOUNDRY_API_KEY", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	t.Setenv("FOUNDRY_MODEL", "gpt-4")

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{"--config", writeTestConfig(t)}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if gotKey != "env-key" {
		t.Fatalf("expected api key from environment, got %q", gotKey)
	}
}

func TestCLIMain_MissingModel(t *testing.T) {
	t.Setenv("FOUNDRY_MODEL", "")

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", "https://example.openai.azure.com",
		"--api-key", "test-key",
	}, &stdout, &stderr)

	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error: --model is required") {
		t.Fatalf("expected required-flag error, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Usage") {
		t.Fatalf("expected usage in stderr, got %q", stderr.String())
	}
}

func TestCLIMain_ListModels(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--api-key", "test-key",
		"--model", "gpt-4",
		"--list-models",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if requests.Load() != 0 {
		t.Fatalf("expected no network traffic, got %d requests", requests.Load())
	}

	out := stdout.String()
	for _, want := range []string{
		"Fetching available models...",
		"Available models:",
		"- gpt-4 (gpt-4)",
		"- gpt-3.5-turbo (gpt-3.5-turbo)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %q", want, out)
		}
	}
}

func TestCLIMain_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"401","message":"Access denied due to invalid subscription key"}}`))
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--api-key", "bad-key",
		"--model", "gpt-4",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") {
		t.Fatalf("expected terminal error on stderr, got %q", stderr.String())
	}
}

func TestCLIMain_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cliMain([]string{"--version"}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "foundry_chat version") {
		t.Fatalf("expected version block, got %q", stdout.String())
	}
}
