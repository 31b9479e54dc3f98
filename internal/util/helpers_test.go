package util

import (
	"testing"
	"time"
)

func TestRelTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-48 * time.Hour), "2d"},
		{now.Add(-30 * 24 * time.Hour), "2026-02-12"},
		{time.Time{}, ""},
	}
	for _, c := range cases {
		if got := RelTime(c.at, now); got != c.want {
			t.Errorf("RelTime(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello…" {
		t.Errorf("truncation wrong: %q", got)
	}
	// Rune-aware, not byte-aware.
	if got := Truncate("héllo wörld", 5); got != "héllo…" {
		t.Errorf("multibyte truncation wrong: %q", got)
	}
}
