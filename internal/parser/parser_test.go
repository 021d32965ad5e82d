package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAssignAndIf(t *testing.T) {
	src := "x = 1\nif x == 1:\n    y = 2\nelif x == 2:\n    y = 3\nelse:\n    y = 4\n"
	mod, diags := Parse(src)
	require.Empty(t, diags)
	require.Len(t, mod.Body, 2)

	assign, ok := mod.Body[0].(*Assign)
	require.True(t, ok)
	require.Equal(t, "x", assign.Target)

	ifStmt, ok := mod.Body[1].(*If)
	require.True(t, ok)
	require.Len(t, ifStmt.Elif, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseWhileAndForRange(t *testing.T) {
	src := "while True:\n    pass\nfor i in range(0, 10, 2):\n    x = i\n"
	mod, diags := Parse(src)
	require.Empty(t, diags)
	require.Len(t, mod.Body, 2)

	_, ok := mod.Body[0].(*While)
	require.True(t, ok)

	forStmt, ok := mod.Body[1].(*ForRange)
	require.True(t, ok)
	require.Equal(t, "i", forStmt.Var)
	start, ok := forStmt.Start.(*NumberLit)
	require.True(t, ok)
	require.Equal(t, "0", start.Raw)
}

func TestParseDefAndCall(t *testing.T) {
	src := "def run(robot):\n    robot.run_action(\"forward\")\n"
	mod, diags := Parse(src)
	require.Len(t, diags, 1)
	require.Equal(t, "I4004", diags[0].Code)
	require.Len(t, mod.Body, 1)

	fn, ok := mod.Body[0].(*FuncDef)
	require.True(t, ok)
	require.Equal(t, "run", fn.Name)
	require.Equal(t, []string{"robot"}, fn.Params)
	require.Len(t, fn.Body, 1)

	exprStmt, ok := fn.Body[0].(*ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.Value.(*Call)
	require.True(t, ok)
	attr, ok := call.Func.(*Attribute)
	require.True(t, ok)
	require.Equal(t, "run_action", attr.Attr)
}

func TestPowerAndComparisonAreLeftAssociative(t *testing.T) {
	mod, diags := Parse("x = a ** b ** c\n")
	require.Empty(t, diags)
	assign := mod.Body[0].(*Assign)
	top, ok := assign.Value.(*Binary)
	require.True(t, ok)
	require.Equal(t, "**", top.Op)
	// left-associative: (a ** b) ** c, so the LEFT child is itself a Binary.
	leftChild, ok := top.Left.(*Binary)
	require.True(t, ok, "expected left-associative nesting on the left child")
	require.Equal(t, "**", leftChild.Op)
	_, rightIsName := top.Right.(*Name)
	require.True(t, rightIsName)

	mod2, diags2 := Parse("x = a < b < c\n")
	require.Empty(t, diags2)
	assign2 := mod2.Body[0].(*Assign)
	cmpTop, ok := assign2.Value.(*Binary)
	require.True(t, ok)
	require.Equal(t, "<", cmpTop.Op)
	_, leftIsBinary := cmpTop.Left.(*Binary)
	require.True(t, leftIsBinary, "chained comparisons should nest left, matching (a<b)<c")
}

func TestWhitelistedCallRecognition(t *testing.T) {
	require.True(t, WhitelistedCalls["RobotContext.run_action"])
	require.True(t, WhitelistedCalls["time.sleep"])
	require.False(t, WhitelistedCalls["os.system"])
}

// TestUnexpectedTopLevelIndentDoesNotHang guards against a parser that
// repeatedly fails to consume tokens on a malformed leading indent, which
// would otherwise spin forever instead of producing diagnostics.
func TestUnexpectedTopLevelIndentDoesNotHang(t *testing.T) {
	src := "    x = 1\ny = 2\n"
	done := make(chan *Module, 1)
	go func() {
		m, _ := Parse(src)
		done <- m
	}()
	select {
	case mod := <-done:
		require.NotNil(t, mod)
		require.NotEmpty(t, mod.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("Parse hung on unexpected top-level indent")
	}
}

func TestResilientRecoveryProducesOpaqueBlock(t *testing.T) {
	src := "x = 1\n+ + + garbage ( ( (\ny = 2\n"
	mod, diags := Parse(src)
	require.NotEmpty(t, diags)

	var sawOpaque bool
	for _, stmt := range mod.Body {
		if _, ok := stmt.(*OpaqueBlock); ok {
			sawOpaque = true
		}
	}
	require.True(t, sawOpaque)

	lastAssign, ok := mod.Body[len(mod.Body)-1].(*Assign)
	require.True(t, ok, "parsing must make forward progress and still reach the trailing statement")
	require.Equal(t, "y", lastAssign.Target)
}

func TestConditionResilienceOnUnparsableIfTest(t *testing.T) {
	src := "if ) ) ) broken:\n    pass\n"
	mod, diags := Parse(src)
	require.NotEmpty(t, diags)
	require.Len(t, mod.Body, 1)
	ifStmt, ok := mod.Body[0].(*If)
	require.True(t, ok)
	_, isName := ifStmt.Test.(*Name)
	require.True(t, isName, "unparsable condition should fall back to a raw Name expr")
}
