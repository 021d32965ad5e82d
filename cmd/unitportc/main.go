// Command unitportc is the offline counterpart to the HTTP API: it runs the
// same compiler pipeline against files on disk, for editors and CI that
// don't want to stand up a server.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unitport/compiler/internal/codegen"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/lexer"
	"github.com/unitport/compiler/internal/lowering/asttoir"
	"github.com/unitport/compiler/internal/lowering/canvastoir"
	"github.com/unitport/compiler/internal/lowering/irtocanvas"
	"github.com/unitport/compiler/internal/parser"
	"github.com/unitport/compiler/internal/schema"
	"github.com/unitport/compiler/internal/validator"
)

var robotType string

var rootCmd = &cobra.Command{
	Use:   "unitportc",
	Short: "unitportc compiles between robot mission source, IR, and canvas graphs",
}

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile mission source to IR, printing the mission and any diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readFile(args[0])
		if err != nil {
			return err
		}
		mission, diags := compileSource(source)
		return printJSON(struct {
			Mission *ir.WorkflowIR           `json:"mission"`
			Diags   []diagnostics.Diagnostic `json:"diagnostics"`
		}{mission, diags})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [mission.json]",
	Short: "Run the semantic validator against an already-compiled mission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mission, err := readMission(args[0])
		if err != nil {
			return err
		}
		diags := validator.Validate(mission, schema.Get())
		return printJSON(diags)
	},
}

var codegenCmd = &cobra.Command{
	Use:   "codegen [mission.json]",
	Short: "Generate mission source from an IR document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mission, err := readMission(args[0])
		if err != nil {
			return err
		}
		source, diags, _ := codegen.Generate(mission, schema.Get())
		if diagnostics.HasError(diags) {
			printDiags(diags)
			return fmt.Errorf("codegen failed")
		}
		fmt.Println(source)
		return nil
	},
}

var canvasToIRCmd = &cobra.Command{
	Use:   "canvas-to-ir [canvas.json]",
	Short: "Lower a canvas graph to a mission IR document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var graph canvastoir.CanvasGraph
		if err := json.Unmarshal(data, &graph); err != nil {
			return fmt.Errorf("parse canvas: %w", err)
		}
		mission, diags := canvastoir.Convert(graph, robotType)
		diags = append(diags, validator.Validate(mission, schema.Get())...)
		return printJSON(struct {
			Mission *ir.WorkflowIR           `json:"mission"`
			Diags   []diagnostics.Diagnostic `json:"diagnostics"`
		}{mission, diags})
	},
}

var irToCanvasCmd = &cobra.Command{
	Use:   "ir-to-canvas [mission.json]",
	Short: "Lay out a mission IR document as a canvas graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mission, err := readMission(args[0])
		if err != nil {
			return err
		}
		graph, diags := irtocanvas.Convert(mission)
		return printJSON(struct {
			Graph irtocanvas.CanvasGraph   `json:"graph"`
			Diags []diagnostics.Diagnostic `json:"diagnostics"`
		}{graph, diags})
	},
}

func compileSource(source string) (*ir.WorkflowIR, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	if _, lexErr := lexer.New(source).Tokenize(); lexErr != nil {
		return nil, append(diags, diagnostics.MakeError(lexErr.Code, lexErr.Error()))
	}

	mod, parseDiags := parser.Parse(source)
	diags = append(diags, parseDiags...)
	if diagnostics.HasError(parseDiags) {
		return nil, diags
	}

	mission, lowerDiags := asttoir.Lower(mod, robotType)
	diags = append(diags, lowerDiags...)
	diags = append(diags, validator.Validate(mission, schema.Get())...)
	return mission, diags
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readMission(path string) (*ir.WorkflowIR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ir.FromJSON(data)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDiags(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Code, d.Message)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&robotType, "robot-type", "go2", "Target robot type for lowering")

	rootCmd.AddCommand(
		compileCmd,
		validateCmd,
		codegenCmd,
		canvasToIRCmd,
		irToCanvasCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
