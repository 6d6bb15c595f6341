package stu

import "testing"

func tokenOps(t *testing.T, toks []Token) string {
	t.Helper()
	var s string
	for _, tok := range toks {
		switch v := tok.(type) {
		case OperatorToken:
			s += string(v.Op)
		case NameToken:
			s += "N(" + v.Name.Name.Format() + ")"
		case CommandToken:
			s += "C(" + v.Payload + ")"
		}
	}
	return s
}

func TestTokenizeOperators(t *testing.T) {
	toks, _, err := Tokenize("f", "a: b ; @c < d")
	if err != nil {
		t.Fatal(err)
	}
	got := tokenOps(t, toks)
	want := "N(a):N(b);@N(c)<N(d)"
	if got != want {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}

func TestTokenizeParametrizedName(t *testing.T) {
	toks, _, err := Tokenize("f", "build/$name.o")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	nt, ok := toks[0].(NameToken)
	if !ok {
		t.Fatalf("expected a NameToken, got %T", toks[0])
	}
	if nt.Name.Name.Format() != "build/$name.o" {
		t.Errorf("got %q", nt.Name.Name.Format())
	}
}

func TestTokenizeCommandBlock(t *testing.T) {
	toks, _, err := Tokenize("f", "a: { echo { nested } hi }")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(toks), toks)
	}
	cmd, ok := toks[2].(CommandToken)
	if !ok {
		t.Fatalf("expected a CommandToken, got %T", toks[2])
	}
	if cmd.Payload != " echo { nested } hi " {
		t.Errorf("payload = %q", cmd.Payload)
	}
}

func TestTokenizeHardcodedBlock(t *testing.T) {
	toks, _, err := Tokenize("f", "a: 'hello world'")
	if err != nil {
		t.Fatal(err)
	}
	cmd, ok := toks[2].(CommandToken)
	if !ok || !cmd.Hardcoded {
		t.Fatalf("expected a hardcoded CommandToken, got %#v", toks[2])
	}
	if cmd.Payload != "hello world" {
		t.Errorf("payload = %q", cmd.Payload)
	}
}

func TestTokenizeComment(t *testing.T) {
	toks, _, err := Tokenize("f", "a # this is a comment\n: b ;")
	if err != nil {
		t.Fatal(err)
	}
	got := tokenOps(t, toks)
	want := "N(a):N(b);"
	if got != want {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}

func TestTokenizeUnterminatedCommandIsError(t *testing.T) {
	_, _, err := Tokenize("f", "a: { echo hi")
	if err == nil {
		t.Fatal("expected an error for an unterminated command block")
	}
}

func TestTokenizeDynamicDollarBracket(t *testing.T) {
	toks, _, err := Tokenize("f", "$[a]")
	if err != nil {
		t.Fatal(err)
	}
	got := tokenOps(t, toks)
	want := "$[N(a)]"
	if got != want {
		t.Errorf("tokens = %q, want %q", got, want)
	}
}
