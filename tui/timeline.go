// ABOUTME: Draws a parsed event list as a one-row ASCII timeline, one cell per frame.
// ABOUTME: Frames holding several events become parenthesised groups; each glyph is coloured by event kind.
package tui

import (
	"strings"

	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
)

const ellipsis = "…"

// glyph is one visible character on the timeline.
type glyph struct {
	text string
	kind marble.Kind
	axis bool
}

// timelineGlyphs lays events out frame by frame. Empty frames become axis dashes.
func timelineGlyphs(events []marble.Event) []glyph {
	if len(events) == 0 {
		return nil
	}
	byFrame := make(map[int][]marble.Event)
	for _, e := range events {
		byFrame[e.Frame] = append(byFrame[e.Frame], e)
	}

	var out []glyph
	for f := 0; f <= marble.MaxFrame(events); f++ {
		evs := byFrame[f]
		switch len(evs) {
		case 0:
			out = append(out, glyph{text: "-", axis: true})
		case 1:
			out = append(out, glyphFor(evs[0]))
		default:
			out = append(out, glyph{text: "(", axis: true})
			for _, e := range evs {
				out = append(out, glyphFor(e))
			}
			out = append(out, glyph{text: ")", axis: true})
		}
	}
	return out
}

func glyphFor(e marble.Event) glyph {
	if sym, ok := marble.Symbol(e.Kind); ok {
		return glyph{text: string(sym), kind: e.Kind}
	}
	text := render.TextOf(e.Value)
	for _, r := range text {
		return glyph{text: string(r), kind: e.Kind}
	}
	return glyph{text: "o", kind: e.Kind}
}

// clip keeps at most width glyphs, replacing the last kept one with an ellipsis
// when the timeline is longer than the available space.
func clip(glyphs []glyph, width int) []glyph {
	if width <= 0 || len(glyphs) <= width {
		return glyphs
	}
	clipped := append([]glyph(nil), glyphs[:width-1]...)
	return append(clipped, glyph{text: ellipsis, axis: true})
}

// PlainTimeline returns the timeline without styling, clipped to width
// columns. A width of zero or less means unlimited.
func PlainTimeline(events []marble.Event, width int) string {
	var b strings.Builder
	for _, g := range clip(timelineGlyphs(events), width) {
		b.WriteString(g.text)
	}
	return b.String()
}

// Timeline returns the coloured timeline, clipped to width columns.
func Timeline(events []marble.Event, width int) string {
	var b strings.Builder
	for _, g := range clip(timelineGlyphs(events), width) {
		if g.axis {
			b.WriteString(AxisStyle.Render(g.text))
			continue
		}
		b.WriteString(StyleForKind(g.kind).Render(g.text))
	}
	return b.String()
}
