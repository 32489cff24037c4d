package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"foundry_cli/pkg/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := config.Default()
	cfg.Credential = config.CredentialStaticToken
	cfg.StaticToken = "test-token"
	cfg.Agents.PollIntervalMS = 1
	cfg.LogFile = filepath.Join(dir, "test.log")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	return path
}

// agentServer replays the thread/message/run/list/delete sequence and
// records each call as "METHOD /path".
func agentServer(t *testing.T, runStatus string, deleteStatus int) (*httptest.Server, *[]string, *string) {
	t.Helper()
	calls := &[]string{}
	authHeader := new(string)

	handler := func(w http.ResponseWriter, r *http.Request) {
		*calls = append(*calls, r.Method+" "+r.URL.Path)
		*authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/threads":
			_, _ = w.Write([]byte(`{"id":"thread_1","object":"thread"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread_1/messages":
			_, _ = w.Write([]byte(`{"id":"msg_1","thread_id":"thread_1","role":"user"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/thread_1/runs":
			if runStatus == "" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"code":"server_error","message":"run creation failed"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"run_1","thread_id":"thread_1","status":"` + runStatus + `"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/threads/thread_1/messages":
			_, _ = w.Write([]byte(`{
				"object": "list",
				"data": [
					{"id":"msg_2","role":"assistant","content":[{"type":"text","text":{"value":"All good."}}]},
					{"id":"msg_1","role":"user","content":[{"type":"text","text":{"value":"ping"}}]}
				]
			}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/threads/thread_1":
			if deleteStatus != 0 {
				w.WriteHeader(deleteStatus)
				_, _ = w.Write([]byte(`{"error":{"code":"server_error","message":"deletion failed"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"thread_1","object":"thread.deleted","deleted":true}`))
		case r.Method == http.MethodGet && r.URL.Path == "/assistants":
			_, _ = w.Write([]byte(`{
				"object": "list",
				"data": [
					{"id":"agent_1","name":"Support bot","description":"Answers questions"},
					{"id":"agent_2"}
				]
			}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}

	return httptest.NewServer(http.HandlerFunc(handler)), calls, authHeader
}

func TestCLIMain_InvokeAgent(t *testing.T) {
	server, calls, authHeader := agentServer(t, "completed", 0)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--agent-id", "agent_1",
		"--prompt", "ping",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}

	wantCalls := []string{
		"POST /threads",
		"POST /threads/thread_1/messages",
		"POST /threads/thread_1/runs",
		"GET /threads/thread_1/messages",
	}
	if len(*calls) != len(wantCalls) {
		t.Fatalf("expected %d calls, got %v", len(wantCalls), *calls)
	}
	for i, want := range wantCalls {
		if (*calls)[i] != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, (*calls)[i])
		}
	}
	if *authHeader != "Bearer test-token" {
		t.Fatalf("expected static token credential, got %q", *authHeader)
	}

	out := stdout.String()
	for _, want := range []string{
		"Invoking agent: agent_1",
		"Prompt: ping",
		`"agent_response": "All good."`,
		"Agent Response:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %q", want, out)
		}
	}
}

func TestCLIMain_Cleanup(t *testing.T) {
	server, calls, _ := agentServer(t, "completed", 0)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--agent-id", "agent_1",
		"--prompt", "ping",
		"--cleanup",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if len(*calls) != 5 {
		t.Fatalf("expected 5 calls, got %v", *calls)
	}
	if (*calls)[4] != "DELETE /threads/thread_1" {
		t.Fatalf("expected thread deletion, got %q", (*calls)[4])
	}
}

func TestCLIMain_CleanupFailureIsNotFatal(t *testing.T) {
	server, calls, _ := agentServer(t, "completed", http.StatusInternalServerError)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--agent-id", "agent_1",
		"--prompt", "ping",
		"--cleanup",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0 despite failed deletion, got %d (stderr: %s)", code, stderr.String())
	}
	if (*calls)[len(*calls)-1] != "DELETE /threads/thread_1" {
		t.Fatalf("expected deletion attempt, got %v", *calls)
	}
}

func TestCLIMain_RunFailureSkipsCleanup(t *testing.T) {
	server, calls, _ := agentServer(t, "", 0)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--agent-id", "agent_1",
		"--prompt", "ping",
		"--cleanup",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") {
		t.Fatalf("expected terminal error on stderr, got %q", stderr.String())
	}
	for _, call := range *calls {
		if strings.HasPrefix(call, "GET ") || strings.HasPrefix(call, "DELETE ") {
			t.Fatalf("expected sequence to stop at failed run, got %v", *calls)
		}
	}
}

func TestCLIMain_ListAgents(t *testing.T) {
	server, calls, _ := agentServer(t, "completed", 0)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", server.URL,
		"--agent-id", "agent_1",
		"--list-agents",
		"--config", writeTestConfig(t),
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr.String())
	}
	if len(*calls) != 1 || (*calls)[0] != "GET /assistants" {
		t.Fatalf("expected a single listing call, got %v", *calls)
	}

	out := stdout.String()
	for _, want := range []string{
		"Fetching available agents...",
		"Available agents:",
		"- Support bot (ID: agent_1)",
		"  Description: Answers questions",
		"- Unknown (ID: agent_2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %q", want, out)
		}
	}
}

func TestCLIMain_MissingAgentID(t *testing.T) {
	t.Setenv("FOUNDRY_AGENT_ID", "")

	var stdout, stderr bytes.Buffer
	code := cliMain([]string{
		"--endpoint", "https://example.services.ai.azure.com/api/projects/p",
	}, &stdout, &stderr)

	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error: --agent-id is required") {
		t.Fatalf("expected required-flag error, got %q", stderr.String())
	}
}

func TestCLIMain_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cliMain([]string{"--version"}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "foundry_agent version") {
		t.Fatalf("expected version block, got %q", stdout.String())
	}
}
