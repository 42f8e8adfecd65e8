// ABOUTME: Style tree for SVG rendering: full defaults plus a partial Overrides tree merged per group.
// ABOUTME: Merge walks the fixed schema field by field so a partial group override keeps its siblings.
package render

// Margin is the space between the canvas edge and the drawing area.
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// TimelineStyle styles the horizontal axis and its ticks.
type TimelineStyle struct {
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`
	Stroke      string  `json:"stroke" yaml:"stroke"`
	TickLength  float64 `json:"tickLength" yaml:"tickLength"`
}

// MarkerStyle styles next-value circles and their text.
type MarkerStyle struct {
	Radius      float64 `json:"radius" yaml:"radius"`
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`
	Fill        string  `json:"fill" yaml:"fill"`
	TextFill    string  `json:"textFill" yaml:"textFill"`
	FontSize    float64 `json:"fontSize" yaml:"fontSize"`
}

// CompleteStyle styles the completion stop-line.
type CompleteStyle struct {
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`
	Height      float64 `json:"height" yaml:"height"`
}

// ErrorStyle styles the error stop-line and X mark.
type ErrorStyle struct {
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`
	Size        float64 `json:"size" yaml:"size"`
}

// SubscriptionStyle styles subscribe/unsubscribe markers.
type SubscriptionStyle struct {
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth"`
	Height      float64 `json:"height" yaml:"height"`
}

// Options is the fully resolved style tree.
type Options struct {
	Width        float64           `json:"width" yaml:"width"`
	Height       float64           `json:"height" yaml:"height"`
	Margin       Margin            `json:"margin" yaml:"margin"`
	Timeline     TimelineStyle     `json:"timeline" yaml:"timeline"`
	Markers      MarkerStyle       `json:"markers" yaml:"markers"`
	Complete     CompleteStyle     `json:"complete" yaml:"complete"`
	Error        ErrorStyle        `json:"error" yaml:"error"`
	Subscription SubscriptionStyle `json:"subscription" yaml:"subscription"`
	FrameWidth   float64           `json:"frameWidth" yaml:"frameWidth"`
}

// DefaultOptions returns the default style tree.
func DefaultOptions() Options {
	return Options{
		Width:  800,
		Height: 60,
		Margin: Margin{Top: 20, Right: 30, Bottom: 10, Left: 30},
		Timeline: TimelineStyle{
			StrokeWidth: 2,
			Stroke:      "#999",
			TickLength:  5,
		},
		Markers: MarkerStyle{
			Radius:      15,
			Stroke:      "#555",
			StrokeWidth: 1.5,
			Fill:        "#fff",
			TextFill:    "#333",
			FontSize:    12,
		},
		Complete: CompleteStyle{
			Stroke:      "#555",
			StrokeWidth: 2,
			Height:      30,
		},
		Error: ErrorStyle{
			Stroke:      "#d44",
			StrokeWidth: 2,
			Size:        15,
		},
		Subscription: SubscriptionStyle{
			Stroke:      "#080",
			StrokeWidth: 1.5,
			Height:      25,
		},
		FrameWidth: 30,
	}
}

// Overrides is a partial style tree. Nil fields keep the base value.
type Overrides struct {
	Width        *float64               `json:"width,omitempty" yaml:"width,omitempty"`
	Height       *float64               `json:"height,omitempty" yaml:"height,omitempty"`
	Margin       *MarginOverrides       `json:"margin,omitempty" yaml:"margin,omitempty"`
	Timeline     *TimelineOverrides     `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Markers      *MarkerOverrides       `json:"markers,omitempty" yaml:"markers,omitempty"`
	Complete     *CompleteOverrides     `json:"complete,omitempty" yaml:"complete,omitempty"`
	Error        *ErrorOverrides        `json:"error,omitempty" yaml:"error,omitempty"`
	Subscription *SubscriptionOverrides `json:"subscription,omitempty" yaml:"subscription,omitempty"`
	FrameWidth   *float64               `json:"frameWidth,omitempty" yaml:"frameWidth,omitempty"`
}

// MarginOverrides is a partial Margin.
type MarginOverrides struct {
	Top    *float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Right  *float64 `json:"right,omitempty" yaml:"right,omitempty"`
	Bottom *float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   *float64 `json:"left,omitempty" yaml:"left,omitempty"`
}

// TimelineOverrides is a partial TimelineStyle.
type TimelineOverrides struct {
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	TickLength  *float64 `json:"tickLength,omitempty" yaml:"tickLength,omitempty"`
}

// MarkerOverrides is a partial MarkerStyle.
type MarkerOverrides struct {
	Radius      *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Fill        *string  `json:"fill,omitempty" yaml:"fill,omitempty"`
	TextFill    *string  `json:"textFill,omitempty" yaml:"textFill,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
}

// CompleteOverrides is a partial CompleteStyle.
type CompleteOverrides struct {
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Height      *float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// ErrorOverrides is a partial ErrorStyle.
type ErrorOverrides struct {
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Size        *float64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// SubscriptionOverrides is a partial SubscriptionStyle.
type SubscriptionOverrides struct {
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Height      *float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Float returns a pointer to v, for building Overrides literals.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s, for building Overrides literals.
func String(s string) *string { return &s }

// Merge returns o with every non-nil field of ov applied. o is not modified.
func (o Options) Merge(ov *Overrides) Options {
	if ov == nil {
		return o
	}
	setFloat(&o.Width, ov.Width)
	setFloat(&o.Height, ov.Height)
	setFloat(&o.FrameWidth, ov.FrameWidth)

	if m := ov.Margin; m != nil {
		setFloat(&o.Margin.Top, m.Top)
		setFloat(&o.Margin.Right, m.Right)
		setFloat(&o.Margin.Bottom, m.Bottom)
		setFloat(&o.Margin.Left, m.Left)
	}
	if t := ov.Timeline; t != nil {
		setFloat(&o.Timeline.StrokeWidth, t.StrokeWidth)
		setString(&o.Timeline.Stroke, t.Stroke)
		setFloat(&o.Timeline.TickLength, t.TickLength)
	}
	if m := ov.Markers; m != nil {
		setFloat(&o.Markers.Radius, m.Radius)
		setString(&o.Markers.Stroke, m.Stroke)
		setFloat(&o.Markers.StrokeWidth, m.StrokeWidth)
		setString(&o.Markers.Fill, m.Fill)
		setString(&o.Markers.TextFill, m.TextFill)
		setFloat(&o.Markers.FontSize, m.FontSize)
	}
	if c := ov.Complete; c != nil {
		setString(&o.Complete.Stroke, c.Stroke)
		setFloat(&o.Complete.StrokeWidth, c.StrokeWidth)
		setFloat(&o.Complete.Height, c.Height)
	}
	if e := ov.Error; e != nil {
		setString(&o.Error.Stroke, e.Stroke)
		setFloat(&o.Error.StrokeWidth, e.StrokeWidth)
		setFloat(&o.Error.Size, e.Size)
	}
	if s := ov.Subscription; s != nil {
		setString(&o.Subscription.Stroke, s.Stroke)
		setFloat(&o.Subscription.StrokeWidth, s.StrokeWidth)
		setFloat(&o.Subscription.Height, s.Height)
	}
	return o
}

// Resolve merges ov over DefaultOptions.
func Resolve(ov *Overrides) Options {
	return DefaultOptions().Merge(ov)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
