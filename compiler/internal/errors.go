package internal

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	UnresolvedSymbolKind ErrorKind = iota
	DuplicateDeclarationKind
	MalformedTreeKind
	ConstAssignmentKind
	SyntaxErrorKind
)

var (
	ErrUnresolvedSymbol     = errors.New("unresolved symbol")
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrMalformedTree        = errors.New("malformed tree")
	ErrConstAssignment      = errors.New("assignment to constant")
	ErrSyntax               = errors.New("syntax error")
)

var errorKindSentinels = map[ErrorKind]error{
	UnresolvedSymbolKind:     ErrUnresolvedSymbol,
	DuplicateDeclarationKind: ErrDuplicateDeclaration,
	MalformedTreeKind:        ErrMalformedTree,
	ConstAssignmentKind:      ErrConstAssignment,
	SyntaxErrorKind:          ErrSyntax,
}

// CompileError is fatal to the compilation unit it was raised in. Line is 0 when unknown.
type CompileError struct {
	Kind ErrorKind
	Name string
	Line int
	Msg  string
}

func (e *CompileError) Error() string {
	prefix := errorKindSentinels[e.Kind].Error()
	if e.Name != "" {
		prefix = fmt.Sprintf("%s %s", prefix, e.Name)
	}
	if e.Line > 0 {
		prefix = fmt.Sprintf("%s at line %d", prefix, e.Line)
	}
	if e.Msg == "" {
		return prefix
	}
	return prefix + ": " + e.Msg
}

func (e *CompileError) Is(target error) bool {
	return errorKindSentinels[e.Kind] == target
}

func makeUnresolvedSymbolError(ident *Ident) error {
	return &CompileError{Kind: UnresolvedSymbolKind, Name: ident.String(), Line: ident.Line}
}

func makeDuplicateDeclarationError(name string, line int) error {
	return &CompileError{Kind: DuplicateDeclarationKind, Name: name, Line: line}
}

func makeMalformedTreeError(line int, format string, msg ...interface{}) error {
	return &CompileError{Kind: MalformedTreeKind, Line: line, Msg: fmt.Sprintf(format, msg...)}
}

func makeConstAssignmentError(name string, line int) error {
	return &CompileError{Kind: ConstAssignmentKind, Name: name, Line: line}
}

func newSyntaxError(line int, msg string) error {
	return &CompileError{Kind: SyntaxErrorKind, Line: line, Msg: msg}
}
