// ABOUTME: Serializer that converts parsed events back into canonical marble notation.
// ABOUTME: Empty frames become "-", a lone item its symbol, and simultaneous items a "(...)" group.
package marble

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Symbol returns the notation character for a non-next kind.
func Symbol(k Kind) (rune, bool) {
	switch k {
	case KindComplete:
		return SymbolComplete, true
	case KindError:
		return SymbolError, true
	case KindSubscribe:
		return SymbolSubscribe, true
	case KindUnsubscribe:
		return SymbolUnsubscribe, true
	default:
		return 0, false
	}
}

// Serialize renders events as canonical notation, the shortest string that
// parses back to the same frames and kinds. Next values must print as a single
// value character; mapped values have no notation form.
func Serialize(events []Event) (string, error) {
	var b strings.Builder

	frame := 0
	for i := 0; i < len(events); {
		f := events[i].Frame
		if f < frame {
			return "", fmt.Errorf("%w: frame %d after frame %d", ErrNotSerializable, f, frame)
		}

		j := i
		for j < len(events) && events[j].Frame == f {
			j++
		}

		symbols, err := frameSymbols(events[i:j])
		if err != nil {
			return "", err
		}

		b.WriteString(strings.Repeat(string(SymbolFrame), f-frame))
		if len(symbols) == 1 {
			b.WriteString(symbols)
		} else {
			b.WriteRune(SymbolGroupStart)
			b.WriteString(symbols)
			b.WriteRune(SymbolGroupEnd)
		}

		frame = f + 1
		i = j
	}

	return b.String(), nil
}

// frameSymbols returns the symbols for one frame's events in parse priority order.
func frameSymbols(events []Event) (string, error) {
	var values, markers strings.Builder
	seen := make(map[Kind]bool)

	for _, e := range events {
		if e.Kind == KindNext {
			ch, err := valueSymbol(e.Value)
			if err != nil {
				return "", fmt.Errorf("%w: frame %d: %v", ErrNotSerializable, e.Frame, err)
			}
			values.WriteRune(ch)
			continue
		}
		if seen[e.Kind] {
			return "", fmt.Errorf("%w: frame %d has more than one %s", ErrNotSerializable, e.Frame, e.Kind)
		}
		seen[e.Kind] = true
	}

	for _, k := range []Kind{KindComplete, KindError, KindSubscribe, KindUnsubscribe} {
		if seen[k] {
			sym, _ := Symbol(k)
			markers.WriteRune(sym)
		}
	}

	return values.String() + markers.String(), nil
}

// valueSymbol converts a next value back to its notation character.
func valueSymbol(v any) (rune, error) {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("value %q is not a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !IsValueChar(r) {
		return 0, fmt.Errorf("value %q is not a value character", s)
	}
	return r, nil
}
