package internal

import (
	"strings"
)

// The resolver rewrites every identifier of a program into the name code generation works with:
// names local to a function (parameters, local constants and local variables) stay bare, every
// other name becomes a canonical global name like `:Util.next_prime`. It also flattens all global
// constants and variables, wherever they are declared, into one table.

// GlobalVariables maps canonical names to their initial value, in declaration order.
// A nil value means the global is uninitialized.
type GlobalVariables struct {
	names  []string
	values map[string]*int64
}

func newGlobalVariables() *GlobalVariables {
	return &GlobalVariables{values: map[string]*int64{}}
}

func (globals *GlobalVariables) add(name string, value *int64, line int) error {
	if _, ok := globals.values[name]; ok {
		return makeDuplicateDeclarationError(name, line)
	}
	globals.names = append(globals.names, name)
	globals.values[name] = value
	return nil
}

// Lookup returns the initial value of a global, and whether the global exists.
func (globals *GlobalVariables) Lookup(name string) (*int64, bool) {
	value, ok := globals.values[name]
	return value, ok
}

func (globals *GlobalVariables) Names() []string {
	return globals.names
}

func (globals *GlobalVariables) Len() int {
	return len(globals.names)
}

// ResolvedFunc is a function whose body only holds resolved identifiers.
type ResolvedFunc struct {
	Name   string
	Params []string
	Consts []*ConstDeclAst
	Vars   []string
	Body   []StatementAst
}

// Resolution is the output of the resolver: the global table and the functions in declaration order.
type Resolution struct {
	Globals   *GlobalVariables
	Funcs     []*ResolvedFunc
	funcIndex map[string]*ResolvedFunc
}

func (resolution *Resolution) Func(name string) *ResolvedFunc {
	return resolution.funcIndex[name]
}

type Resolver struct {
	symbolTable *ScopeSymbolTable
	resolution  *Resolution
}

// funcScope is what the resolver knows about the function it is resolving.
type funcScope struct {
	namespaceStack []string
	locals         map[string]SymbolType
}

// Resolve builds the symbol table of program and resolves it. Any error is fatal:
// no partial resolution is returned.
func Resolve(program *ProgramAst) (*Resolution, error) {
	resolver := &Resolver{
		symbolTable: BuildSymbolTable(program),
		resolution: &Resolution{
			Globals:   newGlobalVariables(),
			funcIndex: map[string]*ResolvedFunc{},
		},
	}
	err := resolver.flattenGlobals(program.Namespaces, program.Consts, program.Vars, nil)
	if err != nil {
		return nil, err
	}
	err = resolver.resolveFuncs(program.Namespaces, program.Funcs, nil)
	if err != nil {
		return nil, err
	}
	return resolver.resolution, nil
}

func generateGlobalName(path []string, name string) string {
	if len(path) == 0 {
		return ":" + name
	}
	return ":" + strings.Join(path, ".") + "." + name
}

func joinPath(prefix []string, path []string) []string {
	ret := make([]string, 0, len(prefix)+len(path))
	ret = append(ret, prefix...)
	return append(ret, path...)
}

// Declarations of a scope come first, then its namespaces in declaration order.
func (resolver *Resolver) flattenGlobals(namespaces []*NamespaceAst, consts []*ConstDeclAst, vars []*VarDeclAst,
	namespaceStack []string) error {
	globals := resolver.resolution.Globals
	for _, c := range consts {
		value := c.Value
		if err := globals.add(generateGlobalName(namespaceStack, c.Name), &value, c.Line); err != nil {
			return err
		}
	}
	for _, v := range vars {
		if err := globals.add(generateGlobalName(namespaceStack, v.Name), nil, v.Line); err != nil {
			return err
		}
	}
	for _, namespace := range namespaces {
		err := resolver.flattenGlobals(namespace.Namespaces, namespace.Consts, namespace.Vars,
			joinPath(namespaceStack, []string{namespace.Name}))
		if err != nil {
			return err
		}
	}
	return nil
}

// Functions of nested namespaces come before the functions of the scope itself.
func (resolver *Resolver) resolveFuncs(namespaces []*NamespaceAst, funcs []*FuncDeclAst, namespaceStack []string) error {
	for _, namespace := range namespaces {
		err := resolver.resolveFuncs(namespace.Namespaces, namespace.Funcs, joinPath(namespaceStack, []string{namespace.Name}))
		if err != nil {
			return err
		}
	}
	for _, fn := range funcs {
		resolved, err := resolver.resolveFunc(fn, namespaceStack)
		if err != nil {
			return err
		}
		if resolver.resolution.funcIndex[resolved.Name] != nil {
			return makeDuplicateDeclarationError(resolved.Name, fn.Line)
		}
		if _, ok := resolver.resolution.Globals.Lookup(resolved.Name); ok {
			return makeDuplicateDeclarationError(resolved.Name, fn.Line)
		}
		resolver.resolution.Funcs = append(resolver.resolution.Funcs, resolved)
		resolver.resolution.funcIndex[resolved.Name] = resolved
	}
	return nil
}

func (resolver *Resolver) resolveFunc(fn *FuncDeclAst, namespaceStack []string) (*ResolvedFunc, error) {
	scope := &funcScope{namespaceStack: namespaceStack, locals: map[string]SymbolType{}}
	for _, param := range fn.Params {
		scope.locals[param] = VarSymbolType
	}
	for _, c := range fn.Consts {
		scope.locals[c.Name] = ConstSymbolType
	}
	vars := make([]string, 0, len(fn.Vars))
	for _, v := range fn.Vars {
		scope.locals[v.Name] = VarSymbolType
		vars = append(vars, v.Name)
	}
	body, err := resolver.resolveStatements(scope, fn.Body)
	if err != nil {
		return nil, err
	}
	return &ResolvedFunc{
		Name:   generateGlobalName(namespaceStack, fn.Name),
		Params: fn.Params,
		Consts: fn.Consts,
		Vars:   vars,
		Body:   body,
	}, nil
}

// lookUpIdent resolves ident to a local or canonical name. known reports whether the kind of the
// symbol is known: absolute paths and functions are not checked against the symbol table.
func (resolver *Resolver) lookUpIdent(scope *funcScope, ident *Ident) (name string, tp SymbolType, known bool, err error) {
	if ident == nil {
		return "", 0, false, makeMalformedTreeError(0, "missing identifier")
	}
	// Locals shadow everything, whatever path was written.
	if tp, ok := scope.locals[ident.Name]; ok {
		return ident.Name, tp, true, nil
	}
	switch ident.Kind {
	case AbsolutePath:
		name = generateGlobalName(ident.Path, ident.Name)
		if target := resolver.symbolTable.lookUpNamespace(ident.Path); target != nil {
			tp, known = target.lookUpBinding(ident.Name)
		}
		return name, tp, known, nil
	case RelativePath:
		// Innermost scope first, the global scope last.
		for i := len(scope.namespaceStack); i >= 0; i-- {
			prefix := scope.namespaceStack[:i]
			target := resolver.symbolTable.lookUpNamespace(joinPath(prefix, ident.Path))
			if target == nil || !target.isNameExist(ident.Name) {
				continue
			}
			tp, known = target.lookUpBinding(ident.Name)
			return generateGlobalName(joinPath(prefix, ident.Path), ident.Name), tp, known, nil
		}
		return "", 0, false, makeUnresolvedSymbolError(ident)
	default:
		return "", 0, false, makeMalformedTreeError(ident.Line, "identifier %s is already resolved", ident.Name)
	}
}

func (resolver *Resolver) resolveIdent(scope *funcScope, ident *Ident) (*Ident, error) {
	name, _, _, err := resolver.lookUpIdent(scope, ident)
	if err != nil {
		return nil, err
	}
	return resolvedIdent(name, ident.Line), nil
}

// resolveTarget resolves an identifier that is written to. Constants cannot be written.
func (resolver *Resolver) resolveTarget(scope *funcScope, ident *Ident) (*Ident, error) {
	name, tp, known, err := resolver.lookUpIdent(scope, ident)
	if err != nil {
		return nil, err
	}
	if known && tp == ConstSymbolType {
		return nil, makeConstAssignmentError(name, ident.Line)
	}
	return resolvedIdent(name, ident.Line), nil
}

func (resolver *Resolver) resolveStatements(scope *funcScope, statements []StatementAst) ([]StatementAst, error) {
	resolved := make([]StatementAst, 0, len(statements))
	for _, stm := range statements {
		resolvedStm, err := resolver.resolveStatement(scope, stm)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedStm)
	}
	return resolved, nil
}

func (resolver *Resolver) resolveStatement(scope *funcScope, statement StatementAst) (StatementAst, error) {
	switch stm := statement.(type) {
	case *SkipStatementAst:
		return &SkipStatementAst{Line: stm.Line}, nil
	case *ReadStatementAst:
		target, err := resolver.resolveTarget(scope, stm.Target)
		if err != nil {
			return nil, err
		}
		return &ReadStatementAst{Target: target, Line: stm.Line}, nil
	case *PrintStatementAst:
		value, err := resolver.resolveExpression(scope, stm.Value)
		if err != nil {
			return nil, err
		}
		return &PrintStatementAst{Value: value, Line: stm.Line}, nil
	case *AssignStatementAst:
		target, err := resolver.resolveTarget(scope, stm.Target)
		if err != nil {
			return nil, err
		}
		value, err := resolver.resolveExpression(scope, stm.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStatementAst{Target: target, Value: value, Line: stm.Line}, nil
	case *CallStatementAst:
		return resolver.resolveCallStatement(scope, stm)
	case *IfStatementAst:
		condition, err := resolver.resolveExpression(scope, stm.Condition)
		if err != nil {
			return nil, err
		}
		thenStm, err := resolver.resolveBranch(scope, stm.Then)
		if err != nil {
			return nil, err
		}
		elseStm, err := resolver.resolveBranch(scope, stm.Else)
		if err != nil {
			return nil, err
		}
		return &IfStatementAst{Condition: condition, Then: thenStm, Else: elseStm, Line: stm.Line}, nil
	case *WhileStatementAst:
		condition, err := resolver.resolveExpression(scope, stm.Condition)
		if err != nil {
			return nil, err
		}
		body, err := resolver.resolveBranch(scope, stm.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStatementAst{Condition: condition, Body: body, Line: stm.Line}, nil
	case *ReturnStatementAst:
		value, err := resolver.resolveExpression(scope, stm.Value)
		if err != nil {
			return nil, err
		}
		return &ReturnStatementAst{Value: value, Line: stm.Line}, nil
	case *BlockStatementAst:
		statements, err := resolver.resolveStatements(scope, stm.Statements)
		if err != nil {
			return nil, err
		}
		return &BlockStatementAst{Statements: statements, Line: stm.Line}, nil
	default:
		return nil, makeMalformedTreeError(0, "unknown statement %T", statement)
	}
}

// A missing arm of an if or a missing loop body stays missing: it is an empty statement.
func (resolver *Resolver) resolveBranch(scope *funcScope, stm StatementAst) (StatementAst, error) {
	if stm == nil {
		return nil, nil
	}
	return resolver.resolveStatement(scope, stm)
}

func (resolver *Resolver) resolveCallStatement(scope *funcScope, stm *CallStatementAst) (StatementAst, error) {
	target, err := resolver.resolveTarget(scope, stm.Target)
	if err != nil {
		return nil, err
	}
	fn, err := resolver.resolveIdent(scope, stm.Func)
	if err != nil {
		return nil, err
	}
	args := make([]ExpressionAst, 0, len(stm.Args))
	for _, arg := range stm.Args {
		resolvedArg, err := resolver.resolveExpression(scope, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, resolvedArg)
	}
	return &CallStatementAst{Target: target, Func: fn, Args: args, Line: stm.Line}, nil
}

func (resolver *Resolver) resolveExpression(scope *funcScope, expression ExpressionAst) (ExpressionAst, error) {
	switch expr := expression.(type) {
	case *VarExpressionAst:
		ident, err := resolver.resolveIdent(scope, expr.Ident)
		if err != nil {
			return nil, err
		}
		return &VarExpressionAst{Ident: ident}, nil
	case *NumberExpressionAst:
		return &NumberExpressionAst{Value: expr.Value, Line: expr.Line}, nil
	case *BinaryExpressionAst:
		left, err := resolver.resolveExpression(scope, expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := resolver.resolveExpression(scope, expr.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpressionAst{Op: expr.Op, Left: left, Right: right}, nil
	default:
		return nil, makeMalformedTreeError(0, "unknown expression %T", expression)
	}
}
