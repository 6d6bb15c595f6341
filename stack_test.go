package stu

import "testing"

func TestFlagStackPushPopIdentity(t *testing.T) {
	s := NewFlagStack()
	s.AddLowest(Persistent)
	if err := s.Push(EmptyPlace); err != nil {
		t.Fatal(err)
	}
	s.AddHighest(Optional)
	if !s.HasLowest(IPersistent) {
		t.Error("expected persistent to still be set at the bottom after push")
	}
	if !s.HasHighest(IOptional) {
		t.Error("expected optional to be set at the top")
	}
	s.Pop()
	if s.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0 after matching pop", s.Depth())
	}
	if !s.HasLowest(IPersistent) {
		t.Error("expected persistent to survive push/pop round trip")
	}
}

func TestFlagStackDepthLimit(t *testing.T) {
	s := NewFlagStack()
	var err error
	n := 0
	for {
		err = s.Push(EmptyPlace)
		if err != nil {
			break
		}
		n++
		if n > wordBits+1 {
			t.Fatal("Push never hit the depth limit")
		}
	}
	if _, ok := err.(*FatalError); !ok {
		t.Errorf("expected a *FatalError at the depth limit, got %T: %v", err, err)
	}
}

func TestFlagStackAddHighestNeg(t *testing.T) {
	s := NewFlagStack()
	s.AddHighest(Persistent | Optional)
	s.AddHighestNeg(Persistent)
	if !s.HasHighest(IPersistent) {
		t.Error("AddHighestNeg should not clear a bit present in its argument")
	}
	if s.HasHighest(IOptional) {
		t.Error("AddHighestNeg should clear a bit absent from its argument")
	}
}

func TestFlagStackRemHighest(t *testing.T) {
	s := NewFlagStack()
	s.AddHighest(Persistent | Optional | Trivial)
	s.RemHighest(Persistent | Optional)
	if s.HasHighest(IPersistent) || s.HasHighest(IOptional) {
		t.Error("RemHighest should clear every bit named in its mask")
	}
	if !s.HasHighest(ITrivial) {
		t.Error("RemHighest should leave bits outside its mask untouched")
	}
}

func TestFlagStackGetBitmapRoundTrip(t *testing.T) {
	f := Persistent | Optional
	s := NewFlagStackAt(0, f)
	if got := s.GetLowest(); got != f {
		t.Errorf("NewFlagStackAt(0, f).GetLowest() = %v, want %v", got, f)
	}
}

func TestFlagStackAdd(t *testing.T) {
	a := NewFlagStack()
	if err := a.Push(EmptyPlace); err != nil {
		t.Fatal(err)
	}
	a.AddLowest(Persistent)
	a.AddHighest(Optional)

	b := NewFlagStack()
	if err := b.Push(EmptyPlace); err != nil {
		t.Fatal(err)
	}
	b.AddLowest(Trivial)
	b.AddHighest(Persistent)

	a.Add(b)
	if !a.HasLowest(IPersistent) || !a.HasLowest(ITrivial) {
		t.Error("Add should OR in the other stack's bottom level")
	}
	if !a.HasHighest(IOptional) || !a.HasHighest(IPersistent) {
		t.Error("Add should OR in the other stack's top level")
	}
}

func TestFlagStackAddNeg(t *testing.T) {
	a := NewFlagStack()
	b := NewFlagStack()
	b.AddLowest(Persistent)

	a.AddNeg(b)
	if a.HasLowest(IPersistent) {
		t.Error("AddNeg should not set a bit present in its argument")
	}
	if !a.HasLowest(IOptional) {
		t.Error("AddNeg should set a bit absent from its argument, within the shared window")
	}
}

func TestFlagStackFromDependency(t *testing.T) {
	inner := NewDirect(PlaceParamTarget{Name: PlaceParamName{Name: NewLiteralName("a.c")}})
	inner.AddFlags(Persistent)
	mid := NewDynamic(EmptyPlace, inner)
	mid.AddFlags(Optional)
	outer := NewDynamic(EmptyPlace, mid)
	outer.AddFlags(Trivial)

	s, err := FlagStackFromDependency(outer)
	if err != nil {
		t.Fatal(err)
	}
	if s.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", s.Depth())
	}
	if !s.HasHighest(ITrivial) {
		t.Error("expected trivial at the top level (outermost Dynamic)")
	}
	if !s.HasAt(IOptional, 1) {
		t.Error("expected optional at level 1 (mid Dynamic)")
	}
	if !s.HasLowest(IPersistent) {
		t.Error("expected persistent at the bottom level (innermost Direct)")
	}
}
