// ABOUTME: Catalogue of sample marble diagrams offered by the viewer picker and used across tests.
// ABOUTME: Each example pairs a notation with an optional character-to-value mapping.
package marble

// Example is a named sample diagram.
type Example struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Notation    string         `json:"notation"`
	Values      map[string]any `json:"values,omitempty"`
}

// Examples returns a fresh copy of the built-in sample diagrams.
func Examples() []Example {
	return []Example{
		{
			Name:        "basic",
			Description: "Two values then completion",
			Notation:    "---a---b---|",
			Values:      map[string]any{"a": "Hello", "b": "World"},
		},
		{
			Name:        "error",
			Description: "Two values then an error",
			Notation:    "---a---b---#",
			Values:      map[string]any{"a": 1, "b": 2},
		},
		{
			Name:        "group",
			Description: "Three values emitted in the same frame",
			Notation:    "---(abc)---|",
			Values:      map[string]any{"a": 1, "b": 2, "c": 3},
		},
		{
			Name:        "hot",
			Description: "Hot stream with a subscription point",
			Notation:    "-a-^-b---c---|",
			Values:      map[string]any{"a": "ignored", "b": "Hello", "c": "World"},
		},
		{
			Name:        "unsubscribe",
			Description: "Consumer unsubscribes before completion",
			Notation:    "-a-^-b---c---!---|",
			Values:      map[string]any{"a": "ignored", "b": "Hello", "c": "World"},
		},
		{
			Name:        "complex",
			Description: "Two synchronous groups",
			Notation:    "---(abc)---(def)---|",
			Values:      map[string]any{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6},
		},
	}
}

// FindExample returns the example with the given name.
func FindExample(name string) (Example, bool) {
	for _, ex := range Examples() {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}
