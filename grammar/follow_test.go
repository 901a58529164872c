package grammar

import (
	"testing"
)

type follow struct {
	nonTerminal string
	symbols     []string
	eof         bool
}

func TestFollowSet(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		follow  []follow
	}{
		{
			caption: "rules contain only non-empty bodies",
			src:     arithmeticSrc,
			follow: []follow{
				{nonTerminal: "S", symbols: []string{")"}, eof: true},
				{nonTerminal: "A", symbols: []string{"+", ")"}, eof: true},
				{nonTerminal: "B", symbols: []string{"*", "+", ")"}, eof: true},
			},
		},
		{
			caption: "rules contain empty bodies",
			src:     expressionSrc,
			follow: []follow{
				{nonTerminal: "E", symbols: []string{")"}, eof: true},
				{nonTerminal: "E'", symbols: []string{")"}, eof: true},
				{nonTerminal: "T", symbols: []string{"+", ")"}, eof: true},
				{nonTerminal: "T'", symbols: []string{"+", ")"}, eof: true},
				{nonTerminal: "F", symbols: []string{"*", "+", ")"}, eof: true},
			},
		},
		{
			caption: "a follow propagates through nullable symbols",
			src: `
s, foo bar baz
bar, ''
bar, b
foo, f
baz, ''
`,
			follow: []follow{
				{nonTerminal: "s", symbols: []string{}, eof: true},
				{nonTerminal: "foo", symbols: []string{"b"}, eof: true},
				{nonTerminal: "bar", symbols: []string{}, eof: true},
				{nonTerminal: "baz", symbols: []string{}, eof: true},
			},
		},
		{
			caption: "a non-terminal that is not the start symbol and never followed",
			src: `
s, x
u, s
`,
			follow: []follow{
				{nonTerminal: "s", symbols: []string{}, eof: true},
				{nonTerminal: "u", symbols: []string{}, eof: false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := readTestGrammar(t, tt.src)
			flw, err := genFollowSet(gram, gram.first)
			if err != nil {
				t.Fatal(err)
			}

			for _, ttFollow := range tt.follow {
				actualFollow, err := flw.find(ttFollow.nonTerminal)
				if err != nil {
					t.Fatalf("failed to get a FOLLOW entry; non-terminal: %v, error: %v", ttFollow.nonTerminal, err)
				}

				expectedFollow := newFollowEntry()
				if ttFollow.eof {
					expectedFollow.addEOF()
				}
				for _, sym := range ttFollow.symbols {
					expectedFollow.add(sym)
				}

				testFollow(t, ttFollow.nonTerminal, actualFollow, expectedFollow)
			}
		})
	}
}

func TestFollow(t *testing.T) {
	gram := readTestGrammar(t, arithmeticSrc)
	tests := []struct {
		nonTerminal string
		follow      string
	}{
		{nonTerminal: "S", follow: "$)"},
		{nonTerminal: "A", follow: "$)+"},
		{nonTerminal: "B", follow: "$)*+"},
	}
	for _, tt := range tests {
		var s string
		for _, sym := range gram.Follow(tt.nonTerminal) {
			s += sym
		}
		if s != tt.follow {
			t.Errorf("unexpected FOLLOW(%v); want: %v, got: %v", tt.nonTerminal, tt.follow, s)
		}
	}
	if gram.Follow("x") != nil {
		t.Errorf("FOLLOW of an unknown symbol must be nil")
	}
}

func testFollow(t *testing.T, nt string, actual, expected *followEntry) {
	if actual.eof != expected.eof {
		t.Errorf("eof is mismatched; non-terminal: %v\nwant: %v\ngot: %v", nt, expected.eof, actual.eof)
	}

	if len(actual.symbols) != len(expected.symbols) {
		t.Fatalf("unexpected symbol count of a FOLLOW entry; non-terminal: %v\nwant: %+v\ngot: %+v", nt, expected.symbols, actual.symbols)
	}

	for eSym := range expected.symbols {
		if _, ok := actual.symbols[eSym]; !ok {
			t.Fatalf("invalid FOLLOW entry; non-terminal: %v\nwant: %+v\ngot: %+v", nt, expected.symbols, actual.symbols)
		}
	}
}
