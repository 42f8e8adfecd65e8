// ABOUTME: Embedded filesystem for viewer templates and static assets.
// ABOUTME: Lets the viewer run from a single binary without template paths on disk.
package viewer

import "embed"

//go:embed templates/*.html templates/partials/*.html static/*.css
var ContentFS embed.FS
