package ratelimit

import "testing"

func TestAllowCreateEnforcesBurst(t *testing.T) {
	l := NewLimiter(Config{CreatePerSecond: 0.2, CreateBurst: 1, PollPerSecond: 2, PollBurst: 4})
	defer l.Close()

	if !l.AllowCreate("user-1") {
		t.Fatal("first CreateSession for a fresh userId should be allowed (burst=1)")
	}
	if l.AllowCreate("user-1") {
		t.Fatal("second immediate CreateSession should be rate limited (burst exhausted)")
	}
}

func TestAllowCreateKeysPerUser(t *testing.T) {
	l := NewLimiter(Config{CreatePerSecond: 0.2, CreateBurst: 1, PollPerSecond: 2, PollBurst: 4})
	defer l.Close()

	l.AllowCreate("user-1")
	if !l.AllowCreate("user-2") {
		t.Fatal("a different userId must have its own independent bucket")
	}
}

func TestAllowCreateEmptyUserAlwaysAllows(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	defer l.Close()
	for i := 0; i < 5; i++ {
		if !l.AllowCreate("") {
			t.Fatal("an empty userId should fail open")
		}
	}
}

func TestAllowPollKeyedBySession(t *testing.T) {
	l := NewLimiter(Config{CreatePerSecond: 0.2, CreateBurst: 1, PollPerSecond: 2, PollBurst: 2})
	defer l.Close()

	if !l.AllowPoll("sess-1") || !l.AllowPoll("sess-1") {
		t.Fatal("both polls within burst=2 should be allowed")
	}
	if l.AllowPoll("sess-1") {
		t.Fatal("third immediate poll should be rate limited")
	}
	if !l.AllowPoll("sess-2") {
		t.Fatal("a different sessionId must have its own bucket")
	}
}

func TestDefaultConfigMatchesDocumentedLimits(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CreatePerSecond != 0.2 || cfg.CreateBurst != 1 {
		t.Fatalf("create limits = (%v, %v), want (0.2, 1)", cfg.CreatePerSecond, cfg.CreateBurst)
	}
	if cfg.PollPerSecond != 2 || cfg.PollBurst != 4 {
		t.Fatalf("poll limits = (%v, %v), want (2, 4)", cfg.PollPerSecond, cfg.PollBurst)
	}
}
