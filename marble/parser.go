// ABOUTME: Single-pass parser turning marble notation ("--a--(bc)--|") into an ordered []Event.
// ABOUTME: Collects per-frame buckets while scanning, then materializes them in fixed kind priority order.
package marble

// Notation symbols.
const (
	SymbolFrame       = '-'
	SymbolComplete    = '|'
	SymbolError       = '#'
	SymbolGroupStart  = '('
	SymbolGroupEnd    = ')'
	SymbolSubscribe   = '^'
	SymbolUnsubscribe = '!'
)

// ParseOptions controls how notation characters become events.
type ParseOptions struct {
	// Values maps value characters to arbitrary values. Unmapped characters
	// pass through as one-character strings.
	Values map[string]any
	// Error is the payload of every Error event. Nil means ErrMarble.
	Error any
	// ExcludeSubscriptionEvents drops the Subscribe/Unsubscribe events for ^ and !.
	ExcludeSubscriptionEvents bool
}

// DefaultParseOptions returns an empty value mapping, ErrMarble as the error
// payload, and subscription events enabled. It equals the zero ParseOptions
// apart from naming the error payload explicitly.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Error: ErrMarble}
}

// ParseOption adjusts ParseOptions for Parse.
type ParseOption func(*ParseOptions)

// WithValues sets the character-to-value mapping.
func WithValues(values map[string]any) ParseOption {
	return func(o *ParseOptions) {
		o.Values = values
	}
}

// WithError sets the payload carried by Error events.
func WithError(payload any) ParseOption {
	return func(o *ParseOptions) {
		o.Error = payload
	}
}

// WithSubscriptionEvents toggles emission of Subscribe/Unsubscribe events.
func WithSubscriptionEvents(include bool) ParseOption {
	return func(o *ParseOptions) {
		o.ExcludeSubscriptionEvents = !include
	}
}

// WithoutSubscriptionEvents drops Subscribe/Unsubscribe events. Frame
// numbering is unaffected.
func WithoutSubscriptionEvents() ParseOption {
	return WithSubscriptionEvents(false)
}

// Parse converts notation into events using the default options adjusted by opts.
func Parse(notation string, opts ...ParseOption) ([]Event, error) {
	o := DefaultParseOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return ParseWith(notation, o)
}

// ParseWith converts notation into events using exactly the given options.
//
// Events are ordered by frame; within a frame values come first in notation
// order, then complete, error, subscribe and unsubscribe. The first character
// outside the alphabet aborts the parse with a *SyntaxError and no events.
func ParseWith(notation string, opts ParseOptions) ([]Event, error) {
	frames, err := scan(notation, !opts.ExcludeSubscriptionEvents)
	if err != nil {
		return nil, err
	}
	return materialize(frames, opts), nil
}

// bucket holds everything that happens at one frame.
type bucket struct {
	values      []string
	complete    bool
	err         bool
	subscribe   bool
	unsubscribe bool
}

// scan walks the notation once, filling a bucket per occupied frame.
// Unoccupied frames stay nil.
func scan(notation string, includeSubscription bool) ([]*bucket, error) {
	var (
		frames  []*bucket
		current int
		inGroup bool
		pending []string
	)

	at := func(frame int) *bucket {
		for len(frames) <= frame {
			frames = append(frames, nil)
		}
		if frames[frame] == nil {
			frames[frame] = &bucket{}
		}
		return frames[frame]
	}

	// advance moves to the next frame unless a group holds time still.
	advance := func() {
		if !inGroup {
			current++
		}
	}

	pos := 0
	for _, r := range notation {
		p := pos
		pos++

		if IsSpace(r) {
			continue
		}

		switch r {
		case SymbolGroupStart:
			inGroup = true
			pending = pending[:0]

		case SymbolGroupEnd:
			inGroup = false
			if len(pending) > 0 {
				b := at(current)
				b.values = append(b.values, pending...)
				pending = pending[:0]
			}
			current++

		case SymbolFrame:
			advance()

		case SymbolComplete:
			at(current).complete = true
			advance()

		case SymbolError:
			at(current).err = true
			advance()

		case SymbolSubscribe:
			if includeSubscription {
				at(current).subscribe = true
			}
			advance()

		case SymbolUnsubscribe:
			if includeSubscription {
				at(current).unsubscribe = true
			}
			advance()

		default:
			if !IsValueChar(r) {
				return nil, &SyntaxError{Char: r, Position: p}
			}
			if inGroup {
				pending = append(pending, string(r))
				continue
			}
			b := at(current)
			b.values = append(b.values, string(r))
			current++
		}
	}

	return frames, nil
}

// materialize flattens frame buckets into events in fixed priority order.
func materialize(frames []*bucket, opts ParseOptions) []Event {
	payload := opts.Error
	if payload == nil {
		payload = ErrMarble
	}
	events := make([]Event, 0, len(frames))
	for frame, b := range frames {
		if b == nil {
			continue
		}
		for _, ch := range b.values {
			events = append(events, Next(frame, resolveValue(ch, opts.Values)))
		}
		if b.complete {
			events = append(events, Complete(frame))
		}
		if b.err {
			events = append(events, Error(frame, payload))
		}
		if b.subscribe {
			events = append(events, Subscribe(frame))
		}
		if b.unsubscribe {
			events = append(events, Unsubscribe(frame))
		}
	}
	return events
}

// resolveValue looks ch up in values, falling back to ch itself.
func resolveValue(ch string, values map[string]any) any {
	if v, ok := values[ch]; ok {
		return v
	}
	return ch
}

// IsValueChar reports whether r may appear as a value in notation.
func IsValueChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IsSpace reports whether r is skipped between notation characters. The set
// is the ECMAScript whitespace and line terminator set, so U+FEFF is skipped
// and U+0085 is not.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
