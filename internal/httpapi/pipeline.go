// Package httpapi exposes the compiler pipeline over HTTP: compile,
// validate, code generation, canvas conversion, and mission execution,
// plus a websocket stream of execution events.
package httpapi

import (
	"context"

	"github.com/unitport/compiler/internal/codegen"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/lexer"
	"github.com/unitport/compiler/internal/lowering/asttoir"
	"github.com/unitport/compiler/internal/lowering/canvastoir"
	"github.com/unitport/compiler/internal/lowering/irtocanvas"
	"github.com/unitport/compiler/internal/parser"
	"github.com/unitport/compiler/internal/schema"
	"github.com/unitport/compiler/internal/tracing"
	"github.com/unitport/compiler/internal/validator"
)

// CompileResult is what a source-to-mission compile produces.
type CompileResult struct {
	Mission *ir.WorkflowIR           `json:"mission"`
	Diags   []diagnostics.Diagnostic `json:"diagnostics"`
}

// CompileSource runs the full source-to-IR pipeline: lex, parse, lower,
// validate. Lexer and parser errors stop the pipeline early since there is
// no AST to lower; everything past that keeps accumulating diagnostics.
func CompileSource(ctx context.Context, source, robotType string) *CompileResult {
	_, span := tracing.StartSpan(ctx, "httpapi.CompileSource")
	defer span.End()

	var diags []diagnostics.Diagnostic

	tokens, lexErr := lexer.New(source).Tokenize()
	if lexErr != nil {
		diags = append(diags, diagnostics.MakeError(lexErr.Code, lexErr.Error()))
		return &CompileResult{Diags: diags}
	}
	_ = tokens

	mod, parseDiags := parser.Parse(source)
	diags = append(diags, parseDiags...)
	if diagnostics.HasError(parseDiags) {
		return &CompileResult{Diags: diags}
	}

	mission, lowerDiags := asttoir.Lower(mod, robotType)
	diags = append(diags, lowerDiags...)

	validateDiags := validator.Validate(mission, schema.Get())
	diags = append(diags, validateDiags...)

	return &CompileResult{Mission: mission, Diags: diags}
}

// CompileCanvas runs the canvas-to-IR side of the pipeline.
func CompileCanvas(graph canvastoir.CanvasGraph, robotType string) *CompileResult {
	mission, diags := canvastoir.Convert(graph, robotType)
	diags = append(diags, validator.Validate(mission, schema.Get())...)
	return &CompileResult{Mission: mission, Diags: diags}
}

// CodegenResult is a generated-source response.
type CodegenResult struct {
	Source    string                    `json:"source"`
	SourceMap map[string][2]int         `json:"source_map"`
	Diags     []diagnostics.Diagnostic  `json:"diagnostics"`
}

// GenerateCode lowers a mission back to source text.
func GenerateCode(mission *ir.WorkflowIR) *CodegenResult {
	source, diags, sm := codegen.Generate(mission, schema.Get())
	flat := map[string][2]int{}
	for _, n := range mission.Nodes {
		if start, end, ok := sm.Get(n.ID); ok {
			flat[n.ID] = [2]int{start, end}
		}
	}
	return &CodegenResult{Source: source, SourceMap: flat, Diags: diags}
}

// CanvasResult is an IR-to-canvas response.
type CanvasResult struct {
	Graph irtocanvas.CanvasGraph   `json:"graph"`
	Diags []diagnostics.Diagnostic `json:"diagnostics"`
}

// GenerateCanvas lowers a mission to a laid-out canvas graph.
func GenerateCanvas(mission *ir.WorkflowIR) *CanvasResult {
	graph, diags := irtocanvas.Convert(mission)
	return &CanvasResult{Graph: graph, Diags: diags}
}

// ValidateMission re-runs the semantic validator against an already-lowered
// mission, for clients that only want to check, not recompile.
func ValidateMission(mission *ir.WorkflowIR) []diagnostics.Diagnostic {
	return validator.Validate(mission, schema.Get())
}
