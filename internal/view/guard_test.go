package view

import "testing"

func TestGuardLastIssuedWins(t *testing.T) {
	var g Guard

	// Two fetches issued in order A then B; A completes last.
	a := g.Begin("list:board:1")
	b := g.Begin("list:board:2")

	if !g.Commit(b) {
		t.Fatal("newest issued fetch must commit")
	}
	if g.Commit(a) {
		t.Fatal("stale fetch must be discarded even though it finished last")
	}
}

func TestGuardCompletionOrderIrrelevant(t *testing.T) {
	var g Guard
	a := g.Begin("x")
	b := g.Begin("y")
	c := g.Begin("z")

	// Completion order c, a, b: only c may land.
	if !g.Commit(c) {
		t.Error("c is newest, should commit")
	}
	if g.Commit(a) || g.Commit(b) {
		t.Error("older tickets must not commit")
	}
}

func TestGuardInvalidate(t *testing.T) {
	var g Guard
	tk := g.Begin("comments:5")
	g.Invalidate()
	if g.Commit(tk) {
		t.Fatal("invalidated guard must discard in-flight results")
	}

	// A fetch issued after invalidation commits normally.
	tk2 := g.Begin("comments:6")
	if !g.Commit(tk2) {
		t.Fatal("fresh fetch after invalidation should commit")
	}
}

func TestTicketKey(t *testing.T) {
	var g Guard
	tk := g.Begin("list:all")
	if tk.Key() != "list:all" {
		t.Errorf("ticket key = %q", tk.Key())
	}
}
