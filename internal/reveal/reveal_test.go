package reveal

import "testing"

func TestToggleIsPerSpan(t *testing.T) {
	s := New()
	doc := "post:1"

	if s.IsRevealed(doc, 0) {
		t.Fatal("spans start hidden")
	}
	if !s.Toggle(doc, 0) {
		t.Fatal("toggle should reveal")
	}
	if !s.IsRevealed(doc, 0) {
		t.Error("span 0 should be revealed")
	}
	// Neighboring spans untouched.
	if s.IsRevealed(doc, 1) {
		t.Error("span 1 must stay hidden")
	}
	// Toggling back hides.
	if s.Toggle(doc, 0) {
		t.Error("second toggle should hide")
	}
	if s.IsRevealed(doc, 0) {
		t.Error("span 0 should be hidden again")
	}
}

func TestDocumentsAreIndependent(t *testing.T) {
	s := New()
	s.Toggle("post:1", 0)
	if s.IsRevealed("post:2", 0) {
		t.Error("reveal state leaked across documents")
	}
	if s.IsRevealed("comment:1", 0) {
		t.Error("reveal state leaked across documents")
	}
}

func TestWholeBodyGateIsOrthogonal(t *testing.T) {
	s := New()
	doc := "post:3"

	s.RevealWhole(doc)
	if !s.WholeRevealed(doc) {
		t.Fatal("whole-body gate should be open")
	}
	// Opening the gate must not reveal inline spans.
	if s.IsRevealed(doc, 0) || s.IsRevealed(doc, 1) {
		t.Error("whole-body reveal must not auto-reveal inline spans")
	}

	// And span toggles must not affect the gate on another doc.
	s.Toggle("post:4", 0)
	if s.WholeRevealed("post:4") {
		t.Error("span toggle must not open the whole-body gate")
	}
}

func TestDrop(t *testing.T) {
	s := New()
	s.Toggle("post:5", 2)
	s.RevealWhole("post:5")
	s.Drop("post:5")
	if s.IsRevealed("post:5", 2) || s.WholeRevealed("post:5") {
		t.Error("dropped document should be back to defaults")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Toggle("post:6", 0)
	s.RevealWhole("comment:7")
	s.Reset()
	if s.IsRevealed("post:6", 0) {
		t.Error("reset should hide every span")
	}
	if s.WholeRevealed("comment:7") {
		t.Error("reset should shut every gate")
	}
}
