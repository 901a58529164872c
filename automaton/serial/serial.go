// Package serial encodes an enumerated deterministic automaton into its binary form
// and a companion table mapping final states to token kinds, and decodes both back
// into a Table that can drive a lexer.
//
// Binary layout, all state ids big-endian and w bytes wide:
//
//	[w:1][final id]...[sentinel][state id, symbol:1, next state id]...
//
// The sentinel is the w-byte all-ones value. The width w is the smallest width whose
// range holds every state id and the sentinel. Transitions are sorted by state, then
// by symbol. The symbol byte 0x00 stands for the wildcard.
package serial

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nihei9/lltab/automaton"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltab.serial'.
func tracer() tracing.Trace {
	return tracing.Select("lltab.serial")
}

// AnyByte is the symbol byte of the wildcard.
const AnyByte = 0x00

var (
	ErrNotDeterministic    = errors.New("the automaton is not deterministic")
	ErrNotEnumerated       = errors.New("the automaton is not enumerated")
	ErrUnaddressableSymbol = errors.New("symbol outside the addressable character space")
	ErrInvalidKindName     = errors.New("invalid token kind name")
	ErrMalformedArtifact   = errors.New("malformed automaton artifact")
)

type encodeConfig struct {
	expandWildcard bool
}

// EncodeOption configures Encode.
type EncodeOption func(config *encodeConfig)

// ExpandWildcard makes Encode write every wildcard transition as one transition per
// character that has no explicit transition from the same state, instead of a single
// transition on AnyByte.
func ExpandWildcard() EncodeOption {
	return func(config *encodeConfig) {
		config.expandWildcard = true
	}
}

// Width returns the number of bytes a state id occupies for n states.
func Width(n int) int {
	w := 1
	for limit := 256; n >= limit; limit *= 256 {
		w++
	}
	return w
}

type triple struct {
	from   int
	symbol byte
	to     int
}

// Encode writes the binary form of a, which must be deterministic and enumerated.
func Encode(a *automaton.Automaton, opts ...EncodeOption) ([]byte, error) {
	config := &encodeConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if !a.IsDeterministic() {
		return nil, ErrNotDeterministic
	}
	if !a.IsEnumerated() {
		return nil, ErrNotEnumerated
	}

	var triples []triple
	for _, s := range a.States() {
		from, _ := s.ID()
		explicit := map[automaton.Symbol]struct{}{}
		for _, sym := range a.Symbols(s) {
			if !sym.IsAddressable() {
				return nil, fmt.Errorf("%w: %v leaving state %v", ErrUnaddressableSymbol, sym, from)
			}
			if sym != automaton.Any {
				explicit[sym] = struct{}{}
			}
		}
		for _, sym := range a.Symbols(s) {
			to, _ := a.Successors(s, sym)[0].ID()
			if sym != automaton.Any {
				triples = append(triples, triple{from: from, symbol: byte(sym), to: to})
				continue
			}
			if !config.expandWildcard {
				triples = append(triples, triple{from: from, symbol: AnyByte, to: to})
				continue
			}
			for c := automaton.CharMin; c <= automaton.CharMax; c++ {
				if _, ok := explicit[c]; ok {
					continue
				}
				triples = append(triples, triple{from: from, symbol: byte(c), to: to})
			}
		}
	}
	sort.Slice(triples, func(i, j int) bool {
		if triples[i].from != triples[j].from {
			return triples[i].from < triples[j].from
		}
		return triples[i].symbol < triples[j].symbol
	})

	w := Width(a.StateCount())
	var b bytes.Buffer
	b.WriteByte(byte(w))
	for _, s := range a.Finals() {
		id, _ := s.ID()
		writeID(&b, id, w)
	}
	for i := 0; i < w; i++ {
		b.WriteByte(0xff)
	}
	for _, t := range triples {
		writeID(&b, t.from, w)
		b.WriteByte(t.symbol)
		writeID(&b, t.to, w)
	}

	tracer().Debugf("encoded %v states: width %v, %v finals, %v transitions, %v bytes", a.StateCount(), w, len(a.Finals()), len(triples), b.Len())

	return b.Bytes(), nil
}

func writeID(b *bytes.Buffer, id int, w int) {
	for i := w - 1; i >= 0; i-- {
		b.WriteByte(byte(id >> (8 * i)))
	}
}

func readID(data []byte) int {
	id := 0
	for _, c := range data {
		id = id<<8 | int(c)
	}
	return id
}

// EncodeLabels writes one line `state:kind[,kind...]` per final state of a, ordered by
// state id. The first kind of a line is the kind the state resolves to.
func EncodeLabels(a *automaton.Automaton) ([]byte, error) {
	if !a.IsEnumerated() {
		return nil, ErrNotEnumerated
	}
	var b bytes.Buffer
	for _, s := range a.Finals() {
		id, _ := s.ID()
		kinds := a.Labels(s)
		if len(kinds) == 0 {
			continue
		}
		for _, k := range kinds {
			if k == "" || strings.ContainsAny(k, ":,\r\n") {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKindName, k)
			}
		}
		fmt.Fprintf(&b, "%v:%v\n", id, strings.Join(kinds, ","))
	}
	return b.Bytes(), nil
}

// DecodeLabels reads the table written by EncodeLabels.
func DecodeLabels(r io.Reader) (map[int][]string, error) {
	labels := map[int][]string{}
	s := bufio.NewScanner(r)
	row := 0
	for s.Scan() {
		row++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, fmt.Errorf("%w: label table line %v: %q", ErrMalformedArtifact, row, line)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%w: label table line %v: state %q", ErrMalformedArtifact, row, parts[0])
		}
		if _, ok := labels[id]; ok {
			return nil, fmt.Errorf("%w: label table line %v: state %v appears twice", ErrMalformedArtifact, row, id)
		}
		labels[id] = strings.Split(parts[1], ",")
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}
