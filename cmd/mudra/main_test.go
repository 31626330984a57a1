package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
)

// setupHome points HOME at a temp dir so default paths stay inside the test.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("output %q does not contain %q", s, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	setupHome(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "defaults were used")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("config init overwrote an existing file without --overwrite")
	}

	out, _, err = runCLI(t, []string{"--config", target, "config", "validate"}, "")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigPrint(t *testing.T) {
	setupHome(t)

	out, _, err := runCLI(t, []string{"config", "print"}, "")
	if err != nil {
		t.Fatalf("config print: %v", err)
	}
	requireContains(t, out, "[gesture]")
	requireContains(t, out, "confidence_floor = 0.7")
}

func TestParseCommand(t *testing.T) {
	setupHome(t)

	out, _, err := runCLI(t, []string{"parse", "--json", "set", "volume", "to", "40"}, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var in struct {
		Action string `json:"action"`
		Slots  struct {
			Volume *int `json:"volume"`
		} `json:"slots"`
	}
	if err := json.Unmarshal([]byte(out), &in); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if in.Action != "volume_set" || in.Slots.Volume == nil || *in.Slots.Volume != 40 {
		t.Errorf("parsed = %+v", in)
	}

	out, _, err = runCLI(t, []string{"parse", "pause"}, "")
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	requireContains(t, out, "pause")
	requireContains(t, out, "confidence")
}

func writeLandmarks(t *testing.T, hands ...detector.HandLandmarks) string {
	t.Helper()
	frames := make([]landmarkFrame, 0, len(hands))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, h := range hands {
		frames = append(frames, landmarkFrame{
			Points: h.Points[:],
			Score:  0.9,
			Ts:     base.Add(time.Duration(i) * 100 * time.Millisecond).UnixMilli(),
		})
	}
	data, err := json.Marshal(frames)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "landmarks.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassifyCommand(t *testing.T) {
	setupHome(t)
	path := writeLandmarks(t,
		detector.FistLandmarks(),
		detector.FistLandmarks(),
		detector.RockLandmarks(),
		detector.RockLandmarks(),
	)

	out, _, err := runCLI(t, []string{"classify", "--json", path}, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var results []classifiedFrame
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	wantLabels := []string{"fist", "fist", "rock", "rock"}
	// Fist fires on its first frame and only once per hold. Rock needs two frames
	// and is still inside the 800ms cooldown.
	wantFired := []bool{true, false, false, false}
	for i, r := range results {
		if string(r.Label) != wantLabels[i] {
			t.Errorf("frame %d label = %s, want %s", i, r.Label, wantLabels[i])
		}
		if r.Fired != wantFired[i] {
			t.Errorf("frame %d fired = %v, want %v", i, r.Fired, wantFired[i])
		}
	}
	if results[3].OffsetMS != 300 {
		t.Errorf("offset = %d, want 300", results[3].OffsetMS)
	}
}

func TestClassifyCommand_Stdin(t *testing.T) {
	setupHome(t)
	open := detector.OpenHandLandmarks()
	payload, _ := json.Marshal(landmarkFrame{Points: open.Points[:], Score: 0.9})

	out, _, err := runCLI(t, []string{"classify", "-"}, string(payload))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "open_hand")

	if _, _, err := runCLI(t, []string{"classify", "-"}, "not json"); err == nil {
		t.Error("classify accepted invalid input")
	}
}

func TestHistoryCommand(t *testing.T) {
	home := setupHome(t)

	out, _, err := runCLI(t, []string{"history"}, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No commands recorded")

	st, err := store.New(filepath.Join(home, ".local", "share", "mudra", "mudra.db"))
	if err != nil {
		t.Fatal(err)
	}
	for i, outcome := range []string{"succeeded", "preempted", "succeeded"} {
		err := st.Commands().Append(&store.Command{
			ID:         "cmd-" + string(rune('a'+i)),
			Channel:    "gesture",
			Action:     "next",
			Confidence: 0.85,
			Outcome:    outcome,
			Source:     "rock",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	st.Close()

	out, _, err = runCLI(t, []string{"history", "--limit", "2"}, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "next")
	requireContains(t, out, "preempted")

	out, _, err = runCLI(t, []string{"history", "--stats", "--json"}, "")
	if err != nil {
		t.Fatalf("history --stats: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if counts["succeeded"] != 2 || counts["preempted"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestBuildDeps_PluginBackendMissing(t *testing.T) {
	setupHome(t)
	ctx := newCommandContext(new(string))
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Playback.Backend = "plugin"
	cfg.Playback.PluginDir = t.TempDir()

	if _, err := buildDeps(cfg, nil, nil); err == nil {
		t.Error("buildDeps succeeded without the player plugin installed")
	}
}
