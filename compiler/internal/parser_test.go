package internal

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) *ProgramAst {
	parser := &Parser{}
	program, err := parser.Parse(strings.NewReader(src))
	require.Nil(t, err, src)
	require.NotNil(t, program)
	return program
}

func TestParser_ParseExample(t *testing.T) {
	parser := &Parser{}
	program, err := parser.ParseFile("testdata/example01.toypl")
	assert.Nil(t, err)
	assert.Len(t, program.Namespaces, 2)
	assert.Len(t, program.Funcs, 1)

	util := program.Namespaces[0]
	assert.Equal(t, "Util", util.Name)
	assert.Len(t, util.Funcs, 4)
	isPrime := util.Funcs[2]
	assert.Equal(t, "is_prime", isPrime.Name)
	assert.Equal(t, []string{"n"}, isPrime.Params)
	assert.Equal(t, []*ConstDeclAst{{Name: "a", Value: 1, Line: 13}}, isPrime.Consts)
	assert.Len(t, isPrime.Vars, 2)

	godel := program.Namespaces[1]
	assert.Equal(t, "Godel", godel.Name)
	assert.Len(t, godel.Vars, 2)
	assert.Equal(t, "prime", godel.Vars[1].Name)

	main := program.Funcs[0]
	assert.Equal(t, []string{}, main.Params)
	assert.Len(t, main.Body, 5)
	call, ok := main.Body[0].(*CallStatementAst)
	assert.True(t, ok)
	assert.Equal(t, &Ident{Kind: RelativePath, Path: []string{"Godel"}, Name: "init_put", Line: 48}, call.Func)
	assert.Equal(t, []ExpressionAst{}, call.Args)
}

func TestParser_ParseWhileStatement(t *testing.T) {
	program := parseSource(t, `func f(n)
var p
begin
  while (p == 0) do {
    n <- n + 1;
    p <- call is_prime(n);
  };
  return n
end`)
	body := program.Funcs[0].Body
	assert.Len(t, body, 2)
	while, ok := body[0].(*WhileStatementAst)
	assert.True(t, ok)
	assert.Equal(t, &BinaryExpressionAst{
		Op:    EqualOpTP,
		Left:  &VarExpressionAst{Ident: &Ident{Kind: RelativePath, Path: []string{}, Name: "p", Line: 4}},
		Right: &NumberExpressionAst{Value: 0, Line: 4},
	}, while.Condition)
	block, ok := while.Body.(*BlockStatementAst)
	assert.True(t, ok)
	assert.Len(t, block.Statements, 2)
}

func TestParser_ParseBooleanExpression(t *testing.T) {
	testData := []struct {
		content  string
		expected string
	}{
		{content: "a < b", expected: "a < b"},
		{content: "(a < b)", expected: "a < b"},
		{content: "((a < b))", expected: "a < b"},
		{content: "(a + 1) * 2 >= b", expected: "((a + 1) * 2) >= b"},
		{content: "a < b and c > d or e == 1", expected: "((a < b) and (c > d)) or (e == 1)"},
		{content: "a < b or c > d and e == 1", expected: "(a < b) or ((c > d) and (e == 1))"},
		{content: "(a < b or c > d) and e /= 1", expected: "((a < b) or (c > d)) and (e /= 1)"},
		{content: "a - b - c % 2 <= :A.B.x", expected: "((a - b) - (c % 2)) <= :A.B.x"},
	}
	tokenizer := &Tokenizer{}
	parser := &Parser{}
	for _, data := range testData {
		tokenizer.Reset()
		parser.reset()
		tokens, err := tokenizer.Tokenize(strings.NewReader(data.content))
		assert.Nil(t, err)
		parser.currentTokens = tokens
		expr, err := parser.parseBooleanExpression()
		assert.Nil(t, err, data.content)
		assert.False(t, parser.hasRemainTokens(), data.content)
		assert.Equal(t, data.expected, expressionString(expr), data.content)
	}
}

func TestParser_ParseStatements(t *testing.T) {
	testData := []struct {
		content string
	}{
		{content: "skip"},
		{content: "x <- read"},
		{content: "print(x + 1)"},
		{content: "A.x <- :B.y"},
		{content: "r <- call :Util.exp(2, n * 3)"},
		{content: "if x < 1 then skip else { y <- 1; z <- 2 }"},
		{content: "while x > 0 do x <- x - 1"},
		{content: "return 0"},
		{content: "{ skip; skip; }"},
	}
	tokenizer := &Tokenizer{}
	parser := &Parser{}
	for _, data := range testData {
		tokenizer.Reset()
		parser.reset()
		tokens, err := tokenizer.Tokenize(strings.NewReader(data.content))
		assert.Nil(t, err)
		parser.currentTokens = tokens
		stm, err := parser.parseStatement()
		assert.Nil(t, err, data.content)
		assert.NotNil(t, stm, data.content)
		assert.False(t, parser.hasRemainTokens(), data.content)
	}
}

func TestParser_PanicModeRecovery(t *testing.T) {
	src := `func main()
var x
begin
  x <- ;
  x <- 1;
  x <- * 2
end`
	parser := &Parser{}
	program, err := parser.Parse(strings.NewReader(src))
	assert.Nil(t, program)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Equal(t, 2, parser.diagnostics.Len())
	assert.Equal(t, 4, parser.diagnostics.Items()[0].Line)
	assert.Equal(t, 6, parser.diagnostics.Items()[1].Line)
	assert.Contains(t, err.Error(), "at line 4")
	assert.Contains(t, err.Error(), "at line 6")
}

func TestParser_FatalSyntaxErrors(t *testing.T) {
	testData := []string{
		"namespace util end",
		"namespace A var x",
		"const x := y",
		"func main( begin skip end",
		"func main() begin end",
		"func main() begin skip",
		"func main() begin { skip end",
		"var x func main() begin skip end end",
	}
	for _, data := range testData {
		parser := &Parser{}
		program, err := parser.Parse(strings.NewReader(data))
		assert.Nil(t, program, data)
		assert.True(t, errors.Is(err, ErrSyntax), data)
	}
}

func TestParser_NumberOutOfRange(t *testing.T) {
	parser := &Parser{}
	_, err := parser.Parse(strings.NewReader("const big := 99999999999999999999"))
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "out of range")
}

func TestParser_ErrorColumn(t *testing.T) {
	parser := &Parser{}
	_, err := parser.Parse(strings.NewReader("func main( begin skip end"))
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "at line 1: unexpected begin at column 12, expect parameter name")
}

func TestParser_FatalErrorKeepsDiagnostics(t *testing.T) {
	src := `func main()
var x
begin
  x <- ;
  x <- 1
end
end`
	parser := &Parser{}
	program, err := parser.Parse(strings.NewReader(src))
	assert.Nil(t, program)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "at line 4")
	assert.Contains(t, err.Error(), "at line 7")
	assert.Equal(t, 1, parser.diagnostics.Len())
}
