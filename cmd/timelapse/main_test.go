package main

import (
	"context"
	"testing"
	"time"
)

func TestIntEnv_UsesFallbackWhenUnsetOrInvalid(t *testing.T) {
	t.Setenv("TL_TEST_INT", "")
	if got := intEnv("TL_TEST_INT", 7); got != 7 {
		t.Fatalf("intEnv()=%d want 7", got)
	}

	t.Setenv("TL_TEST_INT", "not-a-number")
	if got := intEnv("TL_TEST_INT", 7); got != 7 {
		t.Fatalf("intEnv()=%d want fallback 7 on invalid input", got)
	}

	t.Setenv("TL_TEST_INT", "42")
	if got := intEnv("TL_TEST_INT", 7); got != 42 {
		t.Fatalf("intEnv()=%d want 42", got)
	}
}

func TestStrEnv_UsesFallbackWhenUnset(t *testing.T) {
	t.Setenv("TL_TEST_STR", "")
	if got := strEnv("TL_TEST_STR", "default"); got != "default" {
		t.Fatalf("strEnv()=%q want %q", got, "default")
	}

	t.Setenv("TL_TEST_STR", "  override  ")
	if got := strEnv("TL_TEST_STR", "default"); got != "override" {
		t.Fatalf("strEnv()=%q want %q", got, "override")
	}
}

func TestDurationMsEnv_ParsesMilliseconds(t *testing.T) {
	t.Setenv("TL_TEST_MS", "1500")
	if got := durationMsEnv("TL_TEST_MS", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("durationMsEnv()=%v want 1500ms", got)
	}

	t.Setenv("TL_TEST_MS", "")
	if got := durationMsEnv("TL_TEST_MS", 250*time.Millisecond); got != 250*time.Millisecond {
		t.Fatalf("durationMsEnv()=%v want fallback 250ms", got)
	}
}

func TestMustBuildReposFallsBackToMemoryWithoutDSN(t *testing.T) {
	portals, actions, tx := mustBuildRepos("")
	if portals == nil || actions == nil || tx == nil {
		t.Fatal("expected non-nil repos and tx manager for the in-memory fallback")
	}
	if err := tx.RunInTx(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error running noop tx: %v", err)
	}
}

func TestBuildFeedClientFromEnv_UnconfiguredReturnsClearError(t *testing.T) {
	t.Setenv("TIMELAPSE_FEED_URL", "")
	feed, err := buildFeedClientFromEnv()
	if err != nil {
		t.Fatalf("unexpected error building unconfigured feed: %v", err)
	}
	if _, err := feed.FetchHistory(context.Background(), 0); err == nil {
		t.Fatal("expected an error from an unconfigured feed client")
	}
}
