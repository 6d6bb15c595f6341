package stu

import "testing"

func TestLogicalErrorChaining(t *testing.T) {
	p1 := InSource("Stufile", 3, 5)
	p2 := InSource("Stufile", 1, 1)
	err := NewLogicalError(p1, "dependency '%s' is invalid", "a.c").Because(p2, "needed from here")

	got := err.Error()
	if got == "" {
		t.Fatal("expected a non-empty message")
	}
	want := "Stufile:3:5: dependency 'a.c' is invalid\nafter Stufile:1:1: needed from here"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFatalErrorMessage(t *testing.T) {
	err := NewFatalError(EmptyPlace, "dependency nesting is too deep (limit %d levels)", 62)
	want := "dependency nesting is too deep (limit 62 levels)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLogicalErrorIsAnError(t *testing.T) {
	var err error = NewLogicalError(EmptyPlace, "boom")
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
}
