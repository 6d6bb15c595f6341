package stu

import "testing"

func TestIndexOfChar(t *testing.T) {
	tests := []struct {
		c     byte
		want  int
		found bool
	}{
		{'p', IPersistent, true},
		{'o', IOptional, true},
		{'t', ITrivial, true},
		{'n', INewlineSeparated, true},
		{'0', INulSeparated, true},
		{'x', 0, false},
		{'$', 0, false},
	}
	for _, tt := range tests {
		got, found := IndexOfChar(tt.c)
		if found != tt.found || (found && got != tt.want) {
			t.Errorf("IndexOfChar(%q) = (%d, %v), want (%d, %v)", tt.c, got, found, tt.want, tt.found)
		}
	}
}

func TestFlagsFormat(t *testing.T) {
	tests := []struct {
		f    Flags
		want string
	}{
		{0, ""},
		{Persistent, "-p"},
		{Persistent | Trivial, "-p -t"},
		{Read, "-*"},
		{Variable, "-$"},
		{NewlineSep | NulSep, "-n -0"},
	}
	for _, tt := range tests {
		if got := tt.f.Format(); got != tt.want {
			t.Errorf("Flags(%d).Format() = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestFlagsHasAny(t *testing.T) {
	f := Persistent | Trivial
	if !f.Has(Persistent) {
		t.Error("expected Has(Persistent)")
	}
	if f.Has(Persistent | Optional) {
		t.Error("did not expect Has(Persistent|Optional)")
	}
	if !f.Any(Optional | Trivial) {
		t.Error("expected Any(Optional|Trivial)")
	}
	if f.Any(Optional) {
		t.Error("did not expect Any(Optional)")
	}
}

func TestCAllCPlacedCTransitiveLayout(t *testing.T) {
	// Pins the authoritative 8-flag layout decided in DESIGN.md: three
	// placed flags, four transitive flags, eight total.
	if CAll != 8 {
		t.Errorf("CAll = %d, want 8", CAll)
	}
	if CPlaced != 3 {
		t.Errorf("CPlaced = %d, want 3", CPlaced)
	}
	if CTransitive != 4 {
		t.Errorf("CTransitive = %d, want 4", CTransitive)
	}
}
