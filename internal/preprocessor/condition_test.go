package preprocessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCondition_IntegerComparison(t *testing.T) {
	v, err := evalCondition("1 == 1", nil)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = evalCondition("2 > 3", nil)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestEvalCondition_DefinedOperator(t *testing.T) {
	macros := MacroMap{"FOO": {Name: "FOO"}}

	v, err := evalCondition("defined(FOO)", macros)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = evalCondition("defined(BAR)", macros)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestEvalCondition_LogicalOperators(t *testing.T) {
	v, err := evalCondition("1 && 0 || 1", nil)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = evalCondition("!0", nil)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestEvalCondition_ObjectMacroExpandsToInteger(t *testing.T) {
	macros := MacroMap{"VERSION": {Name: "VERSION", Body: []RangelessSymbol{{Kind: int(lexer_KindIntLit), Text: "5"}}}}

	v, err := evalCondition("VERSION >= 5", macros)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestEvalCondition_DivisionByZeroErrors(t *testing.T) {
	_, err := evalCondition("1 / 0", nil)
	assert.Error(t, err)
}

func TestEvalCondition_HexLiteral(t *testing.T) {
	v, err := evalCondition("0xFF == 255", nil)
	require.NoError(t, err)
	assert.True(t, v)
}
