package internal

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func resolveSource(t *testing.T, src string) *Resolution {
	resolution, err := Resolve(parseSource(t, src))
	require.Nil(t, err, src)
	return resolution
}

func funcNames(resolution *Resolution) []string {
	ret := make([]string, 0, len(resolution.Funcs))
	for _, fn := range resolution.Funcs {
		ret = append(ret, fn.Name)
	}
	return ret
}

func TestResolve_Example(t *testing.T) {
	parser := &Parser{}
	program, err := parser.ParseFile("testdata/example01.toypl")
	require.Nil(t, err)
	resolution, err := Resolve(program)
	require.Nil(t, err)

	assert.Equal(t, []string{":Godel.code", ":Godel.prime"}, resolution.Globals.Names())
	value, ok := resolution.Globals.Lookup(":Godel.code")
	assert.True(t, ok)
	assert.Nil(t, value)
	_, ok = resolution.Globals.Lookup(":Godel.missing")
	assert.False(t, ok)

	assert.Equal(t, []string{
		":Util.exp", ":Util.isqrt", ":Util.is_prime", ":Util.next_prime",
		":Godel.init_put", ":Godel.init_get", ":main",
	}, funcNames(resolution))

	isPrime := resolution.Func(":Util.is_prime")
	require.NotNil(t, isPrime)
	assert.Equal(t, []string{"r", "i"}, isPrime.Vars)
	call := isPrime.Body[0].(*CallStatementAst)
	assert.Equal(t, resolvedIdent("r", 16), call.Target)
	assert.Equal(t, resolvedIdent(":Util.isqrt", 16), call.Func)
	assert.Equal(t, []ExpressionAst{&VarExpressionAst{Ident: resolvedIdent("n", 16)}}, call.Args)

	main := resolution.Func(":main")
	require.NotNil(t, main)
	assert.Equal(t, resolvedIdent(":Godel.init_put", 48), main.Body[0].(*CallStatementAst).Func)
	assert.Equal(t, &VarExpressionAst{Ident: resolvedIdent(":Godel.code", 50)}, main.Body[2].(*PrintStatementAst).Value)
	assert.Equal(t, resolvedIdent(":Godel.init_get", 51), main.Body[3].(*CallStatementAst).Func)

	initPut := resolution.Func(":Godel.init_put")
	require.NotNil(t, initPut)
	assert.Equal(t, resolvedIdent(":Godel.code", 36), initPut.Body[0].(*AssignStatementAst).Target)
	assert.Nil(t, resolution.Func(":init_put"))
}

func TestResolve_InnermostScopeFirst(t *testing.T) {
	resolution := resolveSource(t, `namespace A
  namespace B
    var x
    func f()
    begin
      x <- 1
    end
  end
  var x
  func g()
  begin
    x <- 1;
    B.x <- 2;
    :x <- 3
  end
end
var x`)
	assert.Equal(t, []string{":x", ":A.x", ":A.B.x"}, resolution.Globals.Names())
	assert.Equal(t, []string{":A.B.f", ":A.g"}, funcNames(resolution))

	f := resolution.Func(":A.B.f")
	assert.Equal(t, ":A.B.x", f.Body[0].(*AssignStatementAst).Target.Name)
	g := resolution.Func(":A.g")
	assert.Equal(t, ":A.x", g.Body[0].(*AssignStatementAst).Target.Name)
	assert.Equal(t, ":A.B.x", g.Body[1].(*AssignStatementAst).Target.Name)
	assert.Equal(t, ":x", g.Body[2].(*AssignStatementAst).Target.Name)
}

func TestResolve_FallBackToOuterScope(t *testing.T) {
	resolution := resolveSource(t, `namespace A
  namespace B
    func f()
    var r
    begin
      r <- call g();
      r <- call h();
      print(y)
    end
  end
  func g() begin return 0 end
end
var y
func h() begin return 1 end`)
	f := resolution.Func(":A.B.f")
	require.NotNil(t, f)
	assert.Equal(t, ":A.g", f.Body[0].(*CallStatementAst).Func.Name)
	assert.Equal(t, ":h", f.Body[1].(*CallStatementAst).Func.Name)
	assert.Equal(t, ":y", f.Body[2].(*PrintStatementAst).Value.(*VarExpressionAst).Ident.Name)
}

func TestResolve_LocalsShadowGlobals(t *testing.T) {
	resolution := resolveSource(t, `namespace A
  var x
end
var x, y
func f(x)
const y := 4
var z
begin
  A.x <- x;
  z <- y;
  print(z)
end`)
	f := resolution.Func(":f")
	require.NotNil(t, f)
	assign := f.Body[0].(*AssignStatementAst)
	assert.Equal(t, resolvedIdent("x", 9), assign.Target)
	assert.Equal(t, &VarExpressionAst{Ident: resolvedIdent("x", 9)}, assign.Value)
	assert.Equal(t, &VarExpressionAst{Ident: resolvedIdent("y", 10)}, f.Body[1].(*AssignStatementAst).Value)
	assert.Equal(t, []*ConstDeclAst{{Name: "y", Value: 4, Line: 6}}, f.Consts)
	assert.Equal(t, []string{"z"}, f.Vars)
}

func TestResolve_AbsolutePathIsNotChecked(t *testing.T) {
	resolution := resolveSource(t, `func f()
var r
begin
  r <- :Nope.z + 1;
  r <- call :Nope.g(r)
end`)
	f := resolution.Func(":f")
	value := f.Body[0].(*AssignStatementAst).Value.(*BinaryExpressionAst)
	assert.Equal(t, &VarExpressionAst{Ident: resolvedIdent(":Nope.z", 4)}, value.Left)
	assert.Equal(t, resolvedIdent(":Nope.g", 5), f.Body[1].(*CallStatementAst).Func)
}

func TestResolve_NestedStatements(t *testing.T) {
	resolution := resolveSource(t, `namespace N
  var v
  func f(n)
  begin
    if n > 0 then { v <- read; skip } else while v < n do v <- v + 1;
    return v
  end
end`)
	f := resolution.Func(":N.f")
	require.NotNil(t, f)
	ifStm := f.Body[0].(*IfStatementAst)
	assert.Equal(t, "n > 0", expressionString(ifStm.Condition))
	block := ifStm.Then.(*BlockStatementAst)
	assert.Equal(t, resolvedIdent(":N.v", 5), block.Statements[0].(*ReadStatementAst).Target)
	while := ifStm.Else.(*WhileStatementAst)
	assert.Equal(t, ":N.v < n", expressionString(while.Condition))
	assign := while.Body.(*AssignStatementAst)
	assert.Equal(t, resolvedIdent(":N.v", 5), assign.Target)
	assert.Equal(t, ":N.v + 1", expressionString(assign.Value))
	assert.Equal(t, &VarExpressionAst{Ident: resolvedIdent(":N.v", 6)}, f.Body[1].(*ReturnStatementAst).Value)
}

func TestResolve_Errors(t *testing.T) {
	testData := []struct {
		content  string
		expected error
		name     string
	}{
		{content: "func f() begin y <- 1 end", expected: ErrUnresolvedSymbol, name: "y"},
		{content: "func f() var r begin r <- Nope.z end", expected: ErrUnresolvedSymbol, name: "Nope.z"},
		{content: "namespace A var x end func f() begin print(B.x) end", expected: ErrUnresolvedSymbol, name: "B.x"},
		{content: "func f() var r begin r <- call g() end", expected: ErrUnresolvedSymbol, name: "g"},
		{content: "namespace A func g() begin skip end end func f() var r begin r <- call g() end",
			expected: ErrUnresolvedSymbol, name: "g"},
		{content: "const x := 1 var x", expected: ErrDuplicateDeclaration, name: ":x"},
		{content: "namespace A var x end namespace A var x end", expected: ErrDuplicateDeclaration, name: ":A.x"},
		{content: "func f() begin skip end func f() begin skip end", expected: ErrDuplicateDeclaration, name: ":f"},
		{content: "namespace A var f end namespace A func f() begin skip end end", expected: ErrDuplicateDeclaration,
			name: ":A.f"},
		{content: "const c := 1 func f() begin c <- 2 end", expected: ErrConstAssignment, name: ":c"},
		{content: "const c := 1 func f() begin :c <- read end", expected: ErrConstAssignment, name: ":c"},
		{content: "func f() const c := 1 begin c <- 2 end", expected: ErrConstAssignment, name: "c"},
		{content: "namespace A const c := 1 end func f() begin A.c <- call f() end", expected: ErrConstAssignment,
			name: ":A.c"},
	}
	for _, data := range testData {
		resolution, err := Resolve(parseSource(t, data.content))
		assert.Nil(t, resolution, data.content)
		assert.True(t, errors.Is(err, data.expected), data.content)
		var compileErr *CompileError
		if assert.True(t, errors.As(err, &compileErr), data.content) {
			assert.Equal(t, data.name, compileErr.Name, data.content)
			assert.Equal(t, 1, compileErr.Line, data.content)
		}
	}
}

func TestResolve_MalformedTree(t *testing.T) {
	program := &ProgramAst{Funcs: []*FuncDeclAst{{
		Name: "f",
		Body: []StatementAst{&PrintStatementAst{Value: &VarExpressionAst{Ident: resolvedIdent("x", 1)}, Line: 1}},
	}}}
	_, err := Resolve(program)
	assert.True(t, errors.Is(err, ErrMalformedTree))

	program = &ProgramAst{Funcs: []*FuncDeclAst{{Name: "f", Body: []StatementAst{nil}}}}
	_, err = Resolve(program)
	assert.True(t, errors.Is(err, ErrMalformedTree))
}

func TestResolve_Deterministic(t *testing.T) {
	parser := &Parser{}
	program, err := parser.ParseFile("testdata/example01.toypl")
	require.Nil(t, err)
	first, err := Resolve(program)
	require.Nil(t, err)
	second, err := Resolve(program)
	require.Nil(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_MissingArms(t *testing.T) {
	cond := &BinaryExpressionAst{
		Op:    LessOpTP,
		Left:  &VarExpressionAst{Ident: &Ident{Kind: RelativePath, Path: []string{}, Name: "n", Line: 2}},
		Right: &NumberExpressionAst{Value: 1, Line: 2},
	}
	program := &ProgramAst{Funcs: []*FuncDeclAst{{
		Name:   "f",
		Params: []string{"n"},
		Body: []StatementAst{
			&IfStatementAst{Condition: cond, Then: &SkipStatementAst{Line: 2}, Line: 2},
			&WhileStatementAst{Condition: cond, Line: 3},
		},
	}}}
	resolution, err := Resolve(program)
	require.Nil(t, err)
	f := resolution.Func(":f")
	require.NotNil(t, f)
	assert.Nil(t, f.Body[0].(*IfStatementAst).Else)
	assert.Nil(t, f.Body[1].(*WhileStatementAst).Body)

	code, err := GenerateFunction(f)
	require.Nil(t, err)
	assert.Equal(t, []string{
		"t0 <- 1", "t1 <- n < t0", "branch t1 L0 L1", "L0:", "jump L2", "L1:", "L2:",
		"L3:", "t2 <- 1", "t3 <- n < t2", "branch t3 L4 L5", "L4:", "jump L3", "L5:",
	}, instructionStrings(code))
}
