package stu

import "testing"

func TestPlaceStringInSource(t *testing.T) {
	p := InSource("Stufile", 12, 4)
	if p.String() != "Stufile:12:4" {
		t.Errorf("String() = %q, want %q", p.String(), "Stufile:12:4")
	}
}

func TestPlaceStringEmpty(t *testing.T) {
	if EmptyPlace.String() != "" {
		t.Errorf("String() = %q, want empty", EmptyPlace.String())
	}
	if !EmptyPlace.IsEmpty() {
		t.Error("expected EmptyPlace.IsEmpty() to be true")
	}
}

func TestPlaceStringArgv(t *testing.T) {
	p := Argv(2)
	if p.IsEmpty() {
		t.Error("an argv place should not be empty")
	}
	if p.String() == "" {
		t.Error("expected a non-empty rendering for an argv place")
	}
}
