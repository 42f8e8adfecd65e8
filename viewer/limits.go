// ABOUTME: Frame limit for diagrams the viewer parses or renders from caller input.
// ABOUTME: SVG output grows with the highest frame, so frames above maxFrames are rejected with a 400.
package viewer

import (
	"errors"
	"fmt"

	"github.com/2389-research/marble/marble"
)

// maxFrames bounds the highest frame the viewer will draw.
const maxFrames = 10_000

var errTooManyFrames = errors.New("too many frames")

// checkFrames rejects events reaching past maxFrames.
func checkFrames(events []marble.Event) error {
	if n := marble.MaxFrame(events); n > maxFrames {
		return fmt.Errorf("%w: frame %d exceeds the limit of %d", errTooManyFrames, n, maxFrames)
	}
	return nil
}
