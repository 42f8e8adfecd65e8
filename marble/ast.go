// ABOUTME: Event model for parsed marble diagrams: the Kind enumeration, Event values, and lint Diagnostics.
// ABOUTME: Provides constructors per kind, frame helpers, and the JSON/YAML wire form shared by the API and exports.
package marble

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMarble is the error payload attached to Error events when the caller supplies none.
var ErrMarble = errors.New("marble error")

// Kind identifies what an Event represents on the timeline.
type Kind int

const (
	KindNext Kind = iota
	KindComplete
	KindError
	KindSubscribe
	KindUnsubscribe
)

var kindNames = [...]string{"next", "complete", "error", "subscribe", "unsubscribe"}
var kindCodes = [...]string{"N", "C", "E", "S", "U"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k < KindNext || k > KindUnsubscribe {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Code returns the single-letter code used by RxJS-style tooling (N, C, E, S, U).
func (k Kind) Code() string {
	if k < KindNext || k > KindUnsubscribe {
		return "?"
	}
	return kindCodes[k]
}

// IsNotification reports whether the kind carries stream data (next, complete, error).
func (k Kind) IsNotification() bool {
	return k == KindNext || k == KindComplete || k == KindError
}

// IsSubscription reports whether the kind marks consumer lifecycle (subscribe, unsubscribe).
func (k Kind) IsSubscription() bool {
	return k == KindSubscribe || k == KindUnsubscribe
}

// ParseKind accepts either the kind name ("next") or its code ("N").
func ParseKind(s string) (Kind, error) {
	for i := range kindNames {
		if strings.EqualFold(s, kindNames[i]) || s == kindCodes[i] {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindNext || k > KindUnsubscribe {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Event is a single timed entry on a marble timeline.
// Value is only meaningful for KindNext and Err only for KindError.
type Event struct {
	Frame int
	Kind  Kind
	Value any
	Err   any
}

// Next returns a next-value event.
func Next(frame int, value any) Event {
	return Event{Frame: frame, Kind: KindNext, Value: value}
}

// Complete returns a completion event.
func Complete(frame int) Event {
	return Event{Frame: frame, Kind: KindComplete}
}

// Error returns an error event carrying payload.
func Error(frame int, payload any) Event {
	return Event{Frame: frame, Kind: KindError, Err: payload}
}

// Subscribe returns a subscription-start marker.
func Subscribe(frame int) Event {
	return Event{Frame: frame, Kind: KindSubscribe}
}

// Unsubscribe returns a subscription-end marker.
func Unsubscribe(frame int) Event {
	return Event{Frame: frame, Kind: KindUnsubscribe}
}

// Label returns the fixed descriptive label of a subscription marker, or "" for notifications.
func (e Event) Label() string {
	switch e.Kind {
	case KindSubscribe:
		return "subscribe"
	case KindUnsubscribe:
		return "unsubscribe"
	default:
		return ""
	}
}

// String renders the event compactly, e.g. "3:next(a)" or "11:complete".
func (e Event) String() string {
	switch e.Kind {
	case KindNext:
		return fmt.Sprintf("%d:next(%v)", e.Frame, e.Value)
	case KindError:
		return fmt.Sprintf("%d:error(%v)", e.Frame, e.Err)
	default:
		return fmt.Sprintf("%d:%s", e.Frame, e.Kind)
	}
}

// MaxFrame returns the highest frame in events, or 0 when events is empty.
func MaxFrame(events []Event) int {
	max := 0
	for _, e := range events {
		if e.Frame > max {
			max = e.Frame
		}
	}
	return max
}

// wireEvent is the serialized shape of an Event.
type wireEvent struct {
	Frame int    `json:"frame" yaml:"frame"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Error any    `json:"error,omitempty" yaml:"error,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

func (e Event) wire() wireEvent {
	w := wireEvent{Frame: e.Frame, Kind: e.Kind, Label: e.Label()}
	switch e.Kind {
	case KindNext:
		w.Value = payloadForWire(e.Value)
	case KindError:
		w.Error = payloadForWire(e.Err)
	}
	return w
}

// payloadForWire replaces error values, which do not encode usefully, with their message.
func payloadForWire(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// MarshalJSON encodes the event as {"frame":..,"kind":..,"value"|"error"|"label":..}.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Frame < 0 {
		return fmt.Errorf("event frame %d is negative", w.Frame)
	}
	*e = Event{Frame: w.Frame, Kind: w.Kind}
	switch w.Kind {
	case KindNext:
		e.Value = w.Value
	case KindError:
		e.Err = w.Error
		if e.Err == nil {
			e.Err = ErrMarble
		}
	}
	return nil
}

// MarshalYAML returns the same wire shape used for JSON.
func (e Event) MarshalYAML() (any, error) {
	return e.wire(), nil
}

// Diagnostic is an advisory finding about a notation string.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity"` // "error", "warning", "info"
	Rule     string `json:"rule" yaml:"rule"`
	Message  string `json:"message" yaml:"message"`
	Position int    `json:"position" yaml:"position"` // rune offset, -1 when not tied to a character
	Frame    int    `json:"frame" yaml:"frame"`       // -1 when not tied to a frame
}

// Severity levels for Diagnostic.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// String formats the diagnostic for terminal output.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", d.Severity, d.Rule, d.Message)
	if d.Position >= 0 {
		fmt.Fprintf(&b, " (position %d)", d.Position)
	}
	if d.Frame >= 0 {
		fmt.Fprintf(&b, " (frame %d)", d.Frame)
	}
	return b.String()
}
