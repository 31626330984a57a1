package store

import (
	"fmt"
	"testing"
	"time"
)

func TestCommandLog_AppendAndRecent(t *testing.T) {
	log := newTestStore(t).Commands()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, outcome := range []string{"succeeded", "duplicate", "busy"} {
		c := &Command{
			ID:         fmt.Sprintf("cmd-%d", i),
			Channel:    "gesture",
			Action:     "next",
			Confidence: 0.85,
			Outcome:    outcome,
			Source:     "rock",
			At:         base.Add(time.Duration(i) * time.Second),
		}
		if err := log.Append(c); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
		if c.Seq == 0 {
			t.Errorf("Append() did not set Seq")
		}
	}

	recent, err := log.Recent(2)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].ID != "cmd-2" || recent[1].ID != "cmd-1" {
		t.Errorf("expected newest first, got %s, %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].Outcome != "busy" || recent[0].Source != "rock" || recent[0].Confidence != 0.85 {
		t.Errorf("unexpected row %+v", recent[0])
	}
	if !recent[0].At.Equal(base.Add(2 * time.Second)) {
		t.Errorf("At = %v, want %v", recent[0].At, base.Add(2*time.Second))
	}
}

func TestCommandLog_ChannelConstraint(t *testing.T) {
	log := newTestStore(t).Commands()
	err := log.Append(&Command{ID: "x", Channel: "telepathy", Action: "next", Outcome: "succeeded"})
	if err == nil {
		t.Fatal("expected constraint error for unknown channel")
	}
}

func TestCommandLog_CountAndPrune(t *testing.T) {
	log := newTestStore(t).Commands()
	for i := 0; i < 5; i++ {
		outcome := "succeeded"
		if i%2 == 1 {
			outcome = "duplicate"
		}
		if err := log.Append(&Command{ID: fmt.Sprint(i), Channel: "voice", Action: "pause", Outcome: outcome}); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	counts, err := log.CountByOutcome()
	if err != nil {
		t.Fatalf("CountByOutcome() failed: %v", err)
	}
	if counts["succeeded"] != 3 || counts["duplicate"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}

	removed, err := log.Prune(2)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 rows removed, got %d", removed)
	}
	n, err := log.Count()
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v; want 2", n, err)
	}
	recent, _ := log.Recent(10)
	if len(recent) != 2 || recent[0].ID != "4" {
		t.Errorf("prune kept the wrong rows: %+v", recent)
	}
}
