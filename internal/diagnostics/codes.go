package diagnostics

// Code is a stable diagnostic identifier. E1xxx: syntax/lexer/parser.
// E2xxx: semantic/schema. W3xxx: lowering/codegen warnings. I4xxx: info.
type Code struct {
	Code     string
	Category string
	Severity Level
	Template string
}

// Registry is the complete error-code directory, ported from the original
// implementation's error_codes.py. It is consulted by tooling that wants a
// human template for a code; the stages themselves format messages inline.
var Registry = map[string]Code{
	"E1001": {"E1001", "syntax", LevelError, "Lexer error: {detail}"},
	"E1002": {"E1002", "syntax", LevelError, "Parse error: {detail}"},
	"E1003": {"E1003", "syntax", LevelWarn, "Unsupported for-loop syntax: only 'for x in range(...)' is supported"},
	"E1004": {"E1004", "syntax", LevelError, "Unexpected token: {token}"},
	"E1005": {"E1005", "syntax", LevelError, "Indentation error: tabs are not allowed, use spaces"},

	"E2001": {"E2001", "semantic", LevelError, "No schema found for node type '{node_type}'"},
	"E2002": {"E2002", "semantic", LevelError, "Missing required parameter '{param}' for node '{schema_id}'"},
	"E2003": {"E2003", "semantic", LevelError, "Parameter '{param}' value out of range: {value} (expected {min}-{max})"},
	"E2004": {"E2004", "semantic", LevelError, "Parameter '{param}' has invalid value: '{value}' (allowed: {choices})"},
	"E2005": {"E2005", "semantic", LevelError, "Node '{schema_id}' is not compatible with robot '{robot_type}'"},
	"E2006": {"E2006", "semantic", LevelError, "Dangling edge: target node '{node_id}' not found"},
	"E2007": {"E2007", "semantic", LevelWarn, "Node '{schema_id}' is not listed as compatible with robot type '{robot_type}'"},
	"E2008": {"E2008", "semantic", LevelError, "Type mismatch on parameter '{param}': expected {expected}, got {actual}"},
	"E2009": {"E2009", "runtime", LevelError, "Mission blocked by {stage} guard: {detail}"},

	"W3001": {"W3001", "lowering", LevelWarn, "Skipping edge with unmapped node ID: {from_id} -> {to_id}"},
	"W3002": {"W3002", "lowering", LevelWarn, "Unknown function call wrapped as opaque block: {func_name}"},
	"W3003": {"W3003", "lowering", LevelWarn, "Unknown node kind for canvas conversion: {kind}"},
	"W3004": {"W3004", "lowering", LevelWarn, "Opaque code block cannot be fully reconstructed on canvas"},
	"W3005": {"W3005", "codegen", LevelWarn, "Unknown node type in code generation: {schema_id}"},
	"W3006": {"W3006", "runtime", LevelWarn, "Loop on node '{node_id}' hit the iteration cap ({max_iterations})"},

	"I4001": {"I4001", "codegen", LevelInfo, "Code generated: {node_count} nodes, {edge_count} edges"},
	"I4002": {"I4002", "lowering", LevelInfo, "AST lowered: {node_count} nodes, {edge_count} edges"},
	"I4003": {"I4003", "lowering", LevelInfo, "IR to canvas: {node_count} nodes, {connection_count} connections"},
	"I4004": {"I4004", "parser", LevelInfo, "Function definition captured: {func_name}"},
	"I4005": {"I4005", "runtime", LevelInfo, "Mission run finished: task {task_id}, outcome {outcome}"},
	"I4006": {"I4006", "runtime", LevelWarn, "Run cancelled before completion"},
}

// Lookup returns the registry entry for a code, if known.
func Lookup(code string) (Code, bool) {
	c, ok := Registry[code]
	return c, ok
}
