package internal

import (
	"strings"
)

// In this file, we defined the syntax tree of ToyPL according to its grammar. A ToyPL file
// is a program: namespaces, then constants, variables and functions. Namespaces nest and carry
// the same four declaration lists.

type ProgramAst struct {
	Namespaces []*NamespaceAst
	Consts     []*ConstDeclAst
	Vars       []*VarDeclAst
	Funcs      []*FuncDeclAst
}

type NamespaceAst struct {
	Name       string
	Namespaces []*NamespaceAst
	Consts     []*ConstDeclAst
	Vars       []*VarDeclAst
	Funcs      []*FuncDeclAst
	Line       int
}

type ConstDeclAst struct {
	Name  string
	Value int64
	Line  int
}

type VarDeclAst struct {
	Name string
	Line int
}

type FuncDeclAst struct {
	Name   string
	Params []string
	Consts []*ConstDeclAst
	Vars   []*VarDeclAst
	Body   []StatementAst
	Line   int
}

type PathKind int

const (
	RelativePath PathKind = iota
	AbsolutePath
	// ResolvedPath identifiers hold a bare local name or a canonical global name in Name.
	ResolvedPath
)

type Ident struct {
	Kind PathKind
	Path []string
	Name string
	Line int
}

func (ident *Ident) String() string {
	if ident.Kind == ResolvedPath {
		return ident.Name
	}
	var sb strings.Builder
	if ident.Kind == AbsolutePath {
		sb.WriteByte(':')
	}
	for _, ns := range ident.Path {
		sb.WriteString(ns)
		sb.WriteByte('.')
	}
	sb.WriteString(ident.Name)
	return sb.String()
}

func resolvedIdent(name string, line int) *Ident {
	return &Ident{Kind: ResolvedPath, Name: name, Line: line}
}

// StatementAst is one of *SkipStatementAst, *ReadStatementAst, *PrintStatementAst,
// *AssignStatementAst, *CallStatementAst, *IfStatementAst, *WhileStatementAst,
// *ReturnStatementAst or *BlockStatementAst.
type StatementAst interface {
	statementNode()
	StatementLine() int
}

type SkipStatementAst struct {
	Line int
}

type ReadStatementAst struct {
	Target *Ident
	Line   int
}

type PrintStatementAst struct {
	Value ExpressionAst
	Line  int
}

type AssignStatementAst struct {
	Target *Ident
	Value  ExpressionAst
	Line   int
}

// CallStatementAst is `target <- call fn(args)`. ToyPL calls only appear as statements.
type CallStatementAst struct {
	Target *Ident
	Func   *Ident
	Args   []ExpressionAst
	Line   int
}

type IfStatementAst struct {
	Condition ExpressionAst
	Then      StatementAst
	Else      StatementAst
	Line      int
}

type WhileStatementAst struct {
	Condition ExpressionAst
	Body      StatementAst
	Line      int
}

type ReturnStatementAst struct {
	Value ExpressionAst
	Line  int
}

// BlockStatementAst is `{ stmts }`.
type BlockStatementAst struct {
	Statements []StatementAst
	Line       int
}

func (*SkipStatementAst) statementNode()   {}
func (*ReadStatementAst) statementNode()   {}
func (*PrintStatementAst) statementNode()  {}
func (*AssignStatementAst) statementNode() {}
func (*CallStatementAst) statementNode()   {}
func (*IfStatementAst) statementNode()     {}
func (*WhileStatementAst) statementNode()  {}
func (*ReturnStatementAst) statementNode() {}
func (*BlockStatementAst) statementNode()  {}

func (s *SkipStatementAst) StatementLine() int   { return s.Line }
func (s *ReadStatementAst) StatementLine() int   { return s.Line }
func (s *PrintStatementAst) StatementLine() int  { return s.Line }
func (s *AssignStatementAst) StatementLine() int { return s.Line }
func (s *CallStatementAst) StatementLine() int   { return s.Line }
func (s *IfStatementAst) StatementLine() int     { return s.Line }
func (s *WhileStatementAst) StatementLine() int  { return s.Line }
func (s *ReturnStatementAst) StatementLine() int { return s.Line }
func (s *BlockStatementAst) StatementLine() int  { return s.Line }

// ExpressionAst is one of *VarExpressionAst, *NumberExpressionAst or *BinaryExpressionAst.
type ExpressionAst interface {
	expressionNode()
}

type VarExpressionAst struct {
	Ident *Ident
}

type NumberExpressionAst struct {
	Value int64
	Line  int
}

type BinaryExpressionAst struct {
	Op    OpCode
	Left  ExpressionAst
	Right ExpressionAst
}

func (*VarExpressionAst) expressionNode()    {}
func (*NumberExpressionAst) expressionNode() {}
func (*BinaryExpressionAst) expressionNode() {}

type OpCode int

const (
	AddOpTP OpCode = iota
	MinusOpTP
	MultipleOpTP
	DivideOpTP
	ModOpTP
	EqualOpTP
	NotEqualOpTP
	LessOpTP
	LessEqualOpTP
	GreaterOpTP
	GreaterEqualOpTP
	AndOpTP
	OrOpTP
)

func (op OpCode) String() string {
	switch op {
	case AddOpTP:
		return "+"
	case MinusOpTP:
		return "-"
	case MultipleOpTP:
		return "*"
	case DivideOpTP:
		return "/"
	case ModOpTP:
		return "%"
	case EqualOpTP:
		return "=="
	case NotEqualOpTP:
		return "/="
	case LessOpTP:
		return "<"
	case LessEqualOpTP:
		return "<="
	case GreaterOpTP:
		return ">"
	case GreaterEqualOpTP:
		return ">="
	case AndOpTP:
		return "and"
	case OrOpTP:
		return "or"
	}
	return ""
}

var tokenOpCodeMap = map[TokenType]OpCode{
	AddTP:          AddOpTP,
	MinusTP:        MinusOpTP,
	MultiplyTP:     MultipleOpTP,
	DivideTP:       DivideOpTP,
	ModTP:          ModOpTP,
	EqualTP:        EqualOpTP,
	NotEqualTP:     NotEqualOpTP,
	LessTP:         LessOpTP,
	LessEqualTP:    LessEqualOpTP,
	GreaterTP:      GreaterOpTP,
	GreaterEqualTP: GreaterEqualOpTP,
	AndTP:          AndOpTP,
	OrTP:           OrOpTP,
}
