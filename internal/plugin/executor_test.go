package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: name, Version: "1.0.0", Executable: name + ".sh"},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plug := scriptPlugin(t, "ok", `echo '{"success":true,"data":{"playing":true,"volume":40}}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "status"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Errorf("expected success=true, got false")
	}

	var data struct {
		Playing bool `json:"playing"`
		Volume  int  `json:"volume"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if !data.Playing || data.Volume != 40 {
		t.Errorf("unexpected data %+v", data)
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plug := scriptPlugin(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	req := &Request{Action: "play_playlist", Params: json.RawMessage(`{"name":"road trip"}`)}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received struct {
			Action string            `json:"action"`
			Params map[string]string `json:"params"`
		} `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data.Received.Action != "play_playlist" {
		t.Errorf("expected action 'play_playlist', got %q", data.Received.Action)
	}
	if data.Received.Params["name"] != "road trip" {
		t.Errorf("unexpected params %v", data.Received.Params)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plug := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plug, &Request{Action: "play"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_ContextCanceled(t *testing.T) {
	plug := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := NewExecutor(5*time.Second).Execute(ctx, plug, &Request{Action: "play"})
	if err == nil {
		t.Fatal("expected error after cancel, got nil")
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancel reported as timeout: %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("cancel did not stop the plugin promptly")
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plug := scriptPlugin(t, "fail", `echo '{"success":false,"code":"not_found","error":"no playlist named jazz"}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "play_playlist"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Errorf("expected success=false, got true")
	}
	if resp.Code != CodeNotFound {
		t.Errorf("expected code %q, got %q", CodeNotFound, resp.Code)
	}
	if resp.Error != "no playlist named jazz" {
		t.Errorf("unexpected error %q", resp.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plug := scriptPlugin(t, "bad", `echo 'not valid json'
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "play"})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plug := scriptPlugin(t, "exit", `echo "Error: something failed" >&2
exit 1
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "play"})
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
	if !strings.Contains(err.Error(), "something failed") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestNewExecutor(t *testing.T) {
	executor := NewExecutor(3 * time.Second)
	if executor.timeout != 3*time.Second {
		t.Errorf("expected timeout=3s, got %s", executor.timeout)
	}
}
