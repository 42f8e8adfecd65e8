// ABOUTME: Projects parsed marble events onto an SVG document: axis, ticks, and one marker per event.
// ABOUTME: Provides SVG and SVGWith; geometry is a linear frame-to-x mapping on a single centre line.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/2389-research/marble/marble"
)

// capSize is the half-width and height of the arrow cap on completion markers.
const capSize = 5

// labelFontSize is the font size of subscription marker labels.
const labelFontSize = 10

// SVG renders events with the default style merged with ov (which may be nil).
func SVG(events []marble.Event, ov *Overrides) string {
	return SVGWith(events, Resolve(ov))
}

// SVGWith renders events with a fully resolved style tree. Events must have
// non-negative frames; parser output always does.
func SVGWith(events []marble.Event, o Options) string {
	var buf strings.Builder

	drawingWidth := o.Width - (o.Margin.Left + o.Margin.Right)
	drawingHeight := o.Height - (o.Margin.Top + o.Margin.Bottom)
	maxFrame := marble.MaxFrame(events)
	y := o.Margin.Top + drawingHeight/2

	frameX := func(frame int) float64 {
		return o.Margin.Left + float64(frame)*o.FrameWidth
	}

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(o.Width), num(o.Height), num(o.Width), num(o.Height))

	// Axis
	axisEnd := o.Margin.Left + math.Min(drawingWidth, float64(maxFrame+1)*o.FrameWidth)
	writeLine(&buf, o.Margin.Left, y, axisEnd, y, o.Timeline.Stroke, o.Timeline.StrokeWidth, "")

	// Ticks at every frame boundary
	for i := 0; i <= maxFrame+1; i++ {
		x := frameX(i)
		writeLine(&buf, x, y-o.Timeline.TickLength, x, y+o.Timeline.TickLength, o.Timeline.Stroke, o.Timeline.StrokeWidth, "")
	}

	// Subscription markers sit underneath the data markers.
	for _, e := range events {
		if e.Kind == marble.KindSubscribe {
			writeSubscription(&buf, frameX(e.Frame), y, o.Subscription, "3,1", e.Label())
		}
	}
	for _, e := range events {
		if e.Kind == marble.KindUnsubscribe {
			writeSubscription(&buf, frameX(e.Frame), y, o.Subscription, "2,1", e.Label())
		}
	}

	for _, e := range events {
		x := frameX(e.Frame)
		switch e.Kind {
		case marble.KindNext:
			writeNext(&buf, x, y, o.Markers, TextOf(e.Value))
		case marble.KindComplete:
			writeComplete(&buf, x, y, o.Complete)
		case marble.KindError:
			writeError(&buf, x, y, o.Error)
		case marble.KindSubscribe, marble.KindUnsubscribe:
			// drawn above
		}
	}

	buf.WriteString("</svg>")
	return buf.String()
}

// writeNext draws a filled circle with the value text centred on it.
func writeNext(buf *strings.Builder, x, y float64, s MarkerStyle, text string) {
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s" />`,
		num(x), num(y), num(s.Radius), EscapeXML(s.Fill), EscapeXML(s.Stroke), num(s.StrokeWidth))
	fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" font-size="%s" fill="%s">%s</text>`,
		num(x), num(y+s.FontSize/3), num(s.FontSize), EscapeXML(s.TextFill), EscapeXML(text))
}

// writeComplete draws a vertical stop-line capped with a forward arrow.
func writeComplete(buf *strings.Builder, x, y float64, s CompleteStyle) {
	top := y - s.Height/2
	writeLine(buf, x, top, x, y+s.Height/2, s.Stroke, s.StrokeWidth, "")
	fmt.Fprintf(buf, `<path d="M %s %s L %s %s L %s %s Z" fill="%s" />`,
		num(x-capSize), num(top), num(x), num(top-capSize), num(x+capSize), num(top), EscapeXML(s.Stroke))
}

// writeError draws a vertical stop-line crossed by an X.
func writeError(buf *strings.Builder, x, y float64, s ErrorStyle) {
	half := s.Size / 2
	writeLine(buf, x, y-half, x, y+half, s.Stroke, s.StrokeWidth, "")
	fmt.Fprintf(buf, `<path d="M %s %s L %s %s M %s %s L %s %s" stroke="%s" stroke-width="%s" />`,
		num(x-half), num(y-half), num(x+half), num(y+half),
		num(x-half), num(y+half), num(x+half), num(y-half),
		EscapeXML(s.Stroke), num(s.StrokeWidth))
}

// writeSubscription draws a dashed vertical marker with its label above it.
func writeSubscription(buf *strings.Builder, x, y float64, s SubscriptionStyle, dash, label string) {
	top := y - s.Height/2
	writeLine(buf, x, top, x, y+s.Height/2, s.Stroke, s.StrokeWidth, dash)
	fmt.Fprintf(buf, `<text x="%s" y="%s" font-size="%d" fill="%s">%s</text>`,
		num(x+2), num(top-5), labelFontSize, EscapeXML(s.Stroke), EscapeXML(label))
}

// writeLine writes a <line>, adding stroke-dasharray when dash is non-empty.
func writeLine(buf *strings.Builder, x1, y1, x2, y2 float64, stroke string, width float64, dash string) {
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"`,
		num(x1), num(y1), num(x2), num(y2), EscapeXML(stroke), num(width))
	if dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, dash)
	}
	buf.WriteString(" />")
}

// num formats a coordinate in shortest decimal form ("35", "42.5").
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML reserved characters.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// TextOf returns the display text of a next value.
func TextOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}
