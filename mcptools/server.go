// ABOUTME: MCP tool server exposing marble parsing, rendering, linting, and the example catalogue.
// ABOUTME: Tools return text content; failures come back as tool errors so the client sees the message.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/marble/validator"
	"github.com/2389-research/marble/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ParseInput is the argument object of parse_marble.
type ParseInput struct {
	Notation            string         `json:"notation" jsonschema:"marble notation, e.g. --a--b--|"`
	Values              map[string]any `json:"values,omitempty" jsonschema:"maps value characters to emitted values"`
	Error               string         `json:"error,omitempty" jsonschema:"message carried by error events"`
	ExcludeSubscription bool           `json:"excludeSubscription,omitempty" jsonschema:"drop subscribe and unsubscribe events"`
}

func (in ParseInput) request(format export.Format) export.Request {
	return export.Request{
		Notation:            in.Notation,
		Values:              in.Values,
		ErrorMessage:        in.Error,
		ExcludeSubscription: in.ExcludeSubscription,
		Format:              format,
	}
}

// RenderInput is the argument object of render_marble.
type RenderInput struct {
	Notation            string            `json:"notation" jsonschema:"marble notation, e.g. --a--b--|"`
	Values              map[string]any    `json:"values,omitempty" jsonschema:"maps value characters to emitted values"`
	Error               string            `json:"error,omitempty" jsonschema:"message carried by error events"`
	ExcludeSubscription bool              `json:"excludeSubscription,omitempty" jsonschema:"drop subscribe and unsubscribe events"`
	Format              string            `json:"format,omitempty" jsonschema:"svg (default), json, yaml, markdown, html or notation"`
	Style               *render.Overrides `json:"style,omitempty" jsonschema:"partial style overrides"`
}

// request resolves the format name and builds the export request.
func (in RenderInput) request() (export.Request, error) {
	format, err := export.ParseFormat(in.Format)
	if err != nil {
		return export.Request{}, err
	}
	req := ParseInput{
		Notation:            in.Notation,
		Values:              in.Values,
		Error:               in.Error,
		ExcludeSubscription: in.ExcludeSubscription,
	}.request(format)
	req.Style = in.Style
	return req, nil
}

// LintInput is the argument object of lint_marble.
type LintInput struct {
	Notation string `json:"notation" jsonschema:"marble notation to check"`
}

// ExamplesInput is the (empty) argument object of marble_examples.
type ExamplesInput struct{}

// NewServer builds an MCP server with every marble tool registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "marble", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_marble",
		Description: "Parse marble diagram notation into timed events (JSON).",
	}, handleParse)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_marble",
		Description: "Render marble diagram notation as SVG or another export format.",
	}, handleRender)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint_marble",
		Description: "Report syntax errors and suspicious constructs in marble notation.",
	}, handleLint)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "marble_examples",
		Description: "List the built-in example diagrams.",
	}, handleExamples)

	return server
}

// Run serves the tools over stdin/stdout until ctx is cancelled or the client disconnects.
func Run(ctx context.Context, version string) error {
	if err := NewServer(version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func handleParse(ctx context.Context, _ *mcp.CallToolRequest, in ParseInput) (*mcp.CallToolResult, any, error) {
	out, err := export.Render(ctx, in.request(export.FormatJSON))
	if err != nil {
		return toolError(err), nil, nil
	}
	return textResult(string(out)), nil, nil
}

func handleRender(ctx context.Context, _ *mcp.CallToolRequest, in RenderInput) (*mcp.CallToolResult, any, error) {
	req, err := in.request()
	if err != nil {
		return toolError(err), nil, nil
	}
	out, err := export.Render(ctx, req)
	if err != nil {
		return toolError(err), nil, nil
	}
	return textResult(string(out)), nil, nil
}

func handleLint(_ context.Context, _ *mcp.CallToolRequest, in LintInput) (*mcp.CallToolResult, any, error) {
	diags := validator.Lint(in.Notation)
	if diags == nil {
		diags = []marble.Diagnostic{}
	}
	b, err := json.MarshalIndent(map[string]any{
		"diagnostics": diags,
		"hasErrors":   validator.HasErrors(diags),
	}, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(b)), nil, nil
}

func handleExamples(_ context.Context, _ *mcp.CallToolRequest, _ ExamplesInput) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(marble.Examples(), "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(b)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func toolError(err error) *mcp.CallToolResult {
	res := textResult(err.Error())
	res.IsError = true
	return res
}
