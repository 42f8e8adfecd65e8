// ABOUTME: -lint mode: prints validator diagnostics for inline notation or files.
// ABOUTME: Exits 1 when any input has an error-severity finding or cannot be read.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/2389-research/marble/marble/validator"
)

func runLint(cfg config, stdout, stderr io.Writer) int {
	type source struct{ name, notation string }

	var sources []source
	if cfg.notation != "" {
		sources = append(sources, source{"<inline>", cfg.notation})
	}
	code := 0
	for _, f := range cfg.files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			code = 1
			continue
		}
		sources = append(sources, source{f, string(data)})
	}
	if len(sources) == 0 && code == 0 {
		fmt.Fprintln(stderr, "error: -lint needs -n or at least one file")
		return 2
	}

	for _, src := range sources {
		diags := validator.Lint(src.notation)
		if len(diags) == 0 {
			fmt.Fprintf(stdout, "%s: ok\n", src.name)
			continue
		}
		for _, d := range diags {
			fmt.Fprintf(stdout, "%s: %s\n", src.name, d)
		}
		if validator.HasErrors(diags) {
			code = 1
		}
	}
	return code
}
