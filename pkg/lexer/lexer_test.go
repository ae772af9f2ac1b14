package lexer

import "testing"

func collect(source string) []Token {
	l := New(source)
	var out []Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == EndOfFile {
			return out
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := collect("let x = foo;")
	want := []struct {
		kind TokenKind
		val  string
	}{
		{Keyword, "let"}, {Identifier, "x"}, {Operator, "="}, {Identifier, "foo"}, {Punctuation, ";"}, {EndOfFile, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Value != w.val {
			t.Errorf("token %d: got (%s %q), want (%s %q)", i, toks[i].Kind, toks[i].Value, w.kind, w.val)
		}
	}
}

func TestWordOperators(t *testing.T) {
	toks := collect("a and b or not c div d mod e")
	ops := []string{}
	for _, tok := range toks {
		if tok.Kind == Operator {
			ops = append(ops, tok.Value)
		}
	}
	want := []string{"and", "or", "not", "div", "mod"}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i, w := range want {
		if ops[i] != w {
			t.Errorf("op %d: got %q want %q", i, ops[i], w)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	for _, op := range []string{"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "^="} {
		toks := collect(op)
		if len(toks) != 2 || toks[0].Kind != Operator || toks[0].Value != op {
			t.Errorf("operator %q: got %+v", op, toks)
		}
	}
}

func TestLoneBangIsIllegal(t *testing.T) {
	toks := collect("!")
	if toks[0].Kind != Illegal {
		t.Errorf("expected Illegal for lone '!', got %+v", toks[0])
	}
}

func TestTrailingDotNumber(t *testing.T) {
	toks := collect("1.")
	if toks[0].Kind != Number || toks[0].Value != "1." {
		t.Errorf("got %+v", toks[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := collect(`"abc`)
	if toks[0].Kind != Illegal {
		t.Errorf("expected Illegal for unterminated string, got %+v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\tc\"d\\e"`)
	if toks[0].Kind != String {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Value != "a\nb\tc\"d\\e" {
		t.Errorf("got %q", toks[0].Value)
	}
}

func TestLineComment(t *testing.T) {
	toks := collect("let x = 1; # comment\nlet y = 2;")
	count := 0
	for _, tok := range toks {
		if tok.Value == "#" {
			t.Fatalf("comment leaked into token stream: %+v", tok)
		}
		count++
	}
	if count == 0 {
		t.Fatal("no tokens produced")
	}
}

func TestPositionTracking(t *testing.T) {
	toks := collect("let\nx")
	if toks[0].Position.Line != 1 || toks[0].Position.Column != 1 {
		t.Errorf("got %+v", toks[0].Position)
	}
	if toks[1].Position.Line != 2 || toks[1].Position.Column != 1 {
		t.Errorf("got %+v", toks[1].Position)
	}
}

func TestPeekIsIdempotent(t *testing.T) {
	l := New("a b")
	first := l.Peek()
	second := l.Peek()
	if first != second {
		t.Errorf("Peek is not idempotent: %+v vs %+v", first, second)
	}
	if l.Next() != first {
		t.Errorf("Next did not return the peeked token")
	}
}
