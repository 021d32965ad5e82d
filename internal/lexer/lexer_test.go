package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalancedIndentDedent(t *testing.T) {
	src := "if True:\n    x = 1\n    if False:\n        y = 2\nz = 3\n"
	toks, err := New(src).Tokenize()
	require.Nil(t, err)

	depth := 0
	maxDepth := 0
	for _, tok := range toks {
		switch tok.Type {
		case TokIndent:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case TokDedent:
			depth--
		}
	}
	require.Equal(t, 0, depth, "every INDENT must have a matching DEDENT by EOF")
	require.Equal(t, 2, maxDepth)
}

func TestTabIndentationFails(t *testing.T) {
	_, err := New("if True:\n\tpass\n").Tokenize()
	require.NotNil(t, err)
	require.Equal(t, "E1005", err.Code)
}

func TestOperatorsAndKeywords(t *testing.T) {
	toks, err := New("x = a ** b == c\n").Tokenize()
	require.Nil(t, err)
	var types []TokenType
	for _, tok := range toks {
		if tok.Type != TokNewline && tok.Type != TokEOF {
			types = append(types, tok.Type)
		}
	}
	require.Equal(t, []TokenType{TokIdent, TokAssign, TokIdent, TokPower, TokIdent, TokEq, TokIdent}, types)
}

func TestStringLiteralEscapes(t *testing.T) {
	toks, err := New(`s = "a\nb"` + "\n").Tokenize()
	require.Nil(t, err)
	var found bool
	for _, tok := range toks {
		if tok.Type == TokString {
			require.Equal(t, "a\nb", tok.Value)
			found = true
		}
	}
	require.True(t, found)
}
