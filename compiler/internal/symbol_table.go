package internal

// The symbol table of a program is a tree of scopes. The root scope is the program itself and
// every namespace owns a child scope. A scope only knows what is declared directly in it:
// nested namespaces, constants and variables (bindings), and function names.
// It is built once from the syntax tree and never changes afterwards.

type SymbolType int

const (
	ConstSymbolType SymbolType = iota
	VarSymbolType
)

func (tp SymbolType) String() string {
	if tp == ConstSymbolType {
		return "const"
	}
	return "var"
}

type ScopeSymbolTable struct {
	NamespaceSymbolTable map[string]*ScopeSymbolTable
	BindingSymbolTable   map[string]SymbolType
	FuncSymbolTable      map[string]struct{}
}

func newScopeSymbolTable() *ScopeSymbolTable {
	return &ScopeSymbolTable{
		NamespaceSymbolTable: map[string]*ScopeSymbolTable{},
		BindingSymbolTable:   map[string]SymbolType{},
		FuncSymbolTable:      map[string]struct{}{},
	}
}

// BuildSymbolTable builds the root scope of program. It does not resolve anything and never fails:
// a name declared twice in one scope keeps its last declaration, and a namespace declared twice in
// one scope is merged into a single scope.
func BuildSymbolTable(program *ProgramAst) *ScopeSymbolTable {
	table := newScopeSymbolTable()
	table.collect(program.Namespaces, program.Consts, program.Vars, program.Funcs)
	return table
}

func (table *ScopeSymbolTable) collect(namespaces []*NamespaceAst, consts []*ConstDeclAst, vars []*VarDeclAst,
	funcs []*FuncDeclAst) {
	for _, namespace := range namespaces {
		child, ok := table.NamespaceSymbolTable[namespace.Name]
		if !ok {
			child = newScopeSymbolTable()
			table.NamespaceSymbolTable[namespace.Name] = child
		}
		child.collect(namespace.Namespaces, namespace.Consts, namespace.Vars, namespace.Funcs)
	}
	for _, c := range consts {
		table.BindingSymbolTable[c.Name] = ConstSymbolType
	}
	for _, v := range vars {
		table.BindingSymbolTable[v.Name] = VarSymbolType
	}
	for _, fn := range funcs {
		table.FuncSymbolTable[fn.Name] = struct{}{}
	}
}

// lookUpNamespace descends through path from table. It returns nil if some component is missing.
func (table *ScopeSymbolTable) lookUpNamespace(path []string) *ScopeSymbolTable {
	scope := table
	for _, name := range path {
		scope = scope.NamespaceSymbolTable[name]
		if scope == nil {
			return nil
		}
	}
	return scope
}

func (table *ScopeSymbolTable) lookUpBinding(name string) (SymbolType, bool) {
	tp, ok := table.BindingSymbolTable[name]
	return tp, ok
}

func (table *ScopeSymbolTable) isFuncExist(name string) bool {
	_, ok := table.FuncSymbolTable[name]
	return ok
}

func (table *ScopeSymbolTable) isNameExist(name string) bool {
	_, ok := table.lookUpBinding(name)
	return ok || table.isFuncExist(name)
}
