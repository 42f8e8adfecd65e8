// ABOUTME: Advisory lint rules for marble notation: group structure, terminal signals, and subscription markers.
// ABOUTME: Provides Lint(notation) returning diagnostics; parsing semantics are never altered by these checks.
package validator

import (
	"errors"
	"fmt"

	"github.com/2389-research/marble/marble"
)

// Lint runs all lint rules on the notation and returns any diagnostics found.
// A notation that does not parse yields a single "syntax" error diagnostic.
func Lint(notation string) []marble.Diagnostic {
	events, err := marble.Parse(notation)
	if err != nil {
		return []marble.Diagnostic{syntaxDiagnostic(err)}
	}

	var diags []marble.Diagnostic

	diags = append(diags, checkGroups(notation)...)
	diags = append(diags, checkAfterTerminal(events)...)
	diags = append(diags, checkMultipleTerminals(events)...)
	diags = append(diags, checkSubscriptions(events)...)
	diags = append(diags, checkTimeProgression(notation)...)

	return diags
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []marble.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == marble.SeverityError {
			return true
		}
	}
	return false
}

func syntaxDiagnostic(err error) marble.Diagnostic {
	d := marble.Diagnostic{
		Severity: marble.SeverityError,
		Rule:     "syntax",
		Message:  err.Error(),
		Position: -1,
		Frame:    -1,
	}
	var synErr *marble.SyntaxError
	if errors.As(err, &synErr) {
		d.Position = synErr.Position
	}
	return d
}

// checkGroups reports unclosed, unmatched, nested, and empty groups.
func checkGroups(notation string) []marble.Diagnostic {
	var diags []marble.Diagnostic

	open := -1
	contents := 0
	pos := 0
	for _, r := range notation {
		p := pos
		pos++

		switch r {
		case marble.SymbolGroupStart:
			if open >= 0 {
				diags = append(diags, marble.Diagnostic{
					Severity: marble.SeverityWarning,
					Rule:     "nested_group",
					Message:  fmt.Sprintf("group opened inside the group at position %d; values buffered so far are discarded", open),
					Position: p,
					Frame:    -1,
				})
			}
			open = p
			contents = 0

		case marble.SymbolGroupEnd:
			if open < 0 {
				diags = append(diags, marble.Diagnostic{
					Severity: marble.SeverityWarning,
					Rule:     "unmatched_close",
					Message:  "group closed without a matching open; it only advances time",
					Position: p,
					Frame:    -1,
				})
				continue
			}
			if contents == 0 {
				diags = append(diags, marble.Diagnostic{
					Severity: marble.SeverityInfo,
					Rule:     "empty_group",
					Message:  "empty group consumes a frame without emitting",
					Position: open,
					Frame:    -1,
				})
			}
			open = -1

		default:
			if open >= 0 && !marble.IsSpace(r) && r != marble.SymbolFrame {
				contents++
			}
		}
	}

	if open >= 0 {
		diags = append(diags, marble.Diagnostic{
			Severity: marble.SeverityWarning,
			Rule:     "unclosed_group",
			Message:  "group is never closed; its values are not emitted",
			Position: open,
			Frame:    -1,
		})
	}

	return diags
}

// terminalFrame returns the frame of the first complete or error event, or -1.
func terminalFrame(events []marble.Event) int {
	for _, e := range events {
		if e.Kind == marble.KindComplete || e.Kind == marble.KindError {
			return e.Frame
		}
	}
	return -1
}

// checkAfterTerminal warns about stream data arriving after the stream terminated.
func checkAfterTerminal(events []marble.Event) []marble.Diagnostic {
	end := terminalFrame(events)
	if end < 0 {
		return nil
	}
	var diags []marble.Diagnostic
	for _, e := range events {
		if e.Frame > end && e.Kind.IsNotification() {
			diags = append(diags, marble.Diagnostic{
				Severity: marble.SeverityWarning,
				Rule:     "after_terminal",
				Message:  fmt.Sprintf("%s at frame %d follows termination at frame %d", e.Kind, e.Frame, end),
				Position: -1,
				Frame:    e.Frame,
			})
		}
	}
	return diags
}

// checkMultipleTerminals warns when complete/error appears more than once.
func checkMultipleTerminals(events []marble.Event) []marble.Diagnostic {
	count := 0
	for _, e := range events {
		if e.Kind == marble.KindComplete || e.Kind == marble.KindError {
			count++
		}
	}
	if count <= 1 {
		return nil
	}
	return []marble.Diagnostic{{
		Severity: marble.SeverityWarning,
		Rule:     "multiple_terminals",
		Message:  fmt.Sprintf("stream terminates %d times", count),
		Position: -1,
		Frame:    -1,
	}}
}

// checkSubscriptions reports duplicate subscription points and orphan unsubscribes.
func checkSubscriptions(events []marble.Event) []marble.Diagnostic {
	var diags []marble.Diagnostic
	subscribed := false
	subscribes := 0
	for _, e := range events {
		switch e.Kind {
		case marble.KindSubscribe:
			subscribed = true
			subscribes++
		case marble.KindUnsubscribe:
			if !subscribed {
				diags = append(diags, marble.Diagnostic{
					Severity: marble.SeverityInfo,
					Rule:     "unsubscribe_without_subscribe",
					Message:  "unsubscribe has no earlier subscription point; the subscription starts at frame 0",
					Position: -1,
					Frame:    e.Frame,
				})
			}
		}
	}
	if subscribes > 1 {
		diags = append(diags, marble.Diagnostic{
			Severity: marble.SeverityWarning,
			Rule:     "multiple_subscribe",
			Message:  fmt.Sprintf("%d subscription points; only one is meaningful", subscribes),
			Position: -1,
			Frame:    -1,
		})
	}
	return diags
}

// checkTimeProgression flags whitespace-delimited tokens such as "1s" or "500ms".
// Explicit time units are not part of the notation, so these characters read as values.
func checkTimeProgression(notation string) []marble.Diagnostic {
	var diags []marble.Diagnostic
	runes := []rune(notation)
	for i := 0; i < len(runes); {
		if marble.IsSpace(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && !marble.IsSpace(runes[i]) {
			i++
		}
		token := string(runes[start:i])
		if isTimeToken(token) {
			diags = append(diags, marble.Diagnostic{
				Severity: marble.SeverityInfo,
				Rule:     "time_progression",
				Message:  fmt.Sprintf("%q looks like a time progression; time units are not supported and each character is a value", token),
				Position: start,
				Frame:    -1,
			})
		}
	}
	return diags
}

// isTimeToken matches digits followed by ms, s, or m.
func isTimeToken(token string) bool {
	digits := 0
	for digits < len(token) && token[digits] >= '0' && token[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return false
	}
	switch token[digits:] {
	case "ms", "s", "m":
		return true
	}
	return false
}
