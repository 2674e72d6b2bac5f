package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Diagnostic is one recovered syntax error.
type Diagnostic struct {
	Line int
	Msg  string
}

// Diagnostics collects the syntax errors the parser recovered from. It is owned by one Parser.
type Diagnostics struct {
	items []Diagnostic
}

func (d *Diagnostics) Add(line int, msg string) {
	d.items = append(d.items, Diagnostic{Line: line, Msg: msg})
}

func (d *Diagnostics) Len() int {
	return len(d.items)
}

func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Err joins every collected diagnostic into one error, or returns nil.
func (d *Diagnostics) Err() error {
	if len(d.items) == 0 {
		return nil
	}
	errs := make([]error, 0, len(d.items))
	for _, item := range d.items {
		errs = append(errs, newSyntaxError(item.Line, item.Msg))
	}
	return errors.Join(errs...)
}

type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
	diagnostics     *Diagnostics
}

func (parser *Parser) reset() {
	parser.currentTokenPos, parser.currentTokens = 0, nil
	parser.diagnostics = &Diagnostics{}
}

func (parser *Parser) ParseFile(fileName string) (*ProgramAst, error) {
	rd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return parser.Parse(rd)
}

// Parse tokenizes rd and parses a whole program. Syntax errors inside statement lists are
// recovered from and reported together; any other syntax error stops parsing.
func (parser *Parser) Parse(rd io.Reader) (*ProgramAst, error) {
	parser.reset()
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, err
	}
	parser.currentTokens = tokens
	return parser.ParseProgram()
}

// program : namespace* [const consts] [var vars] func*
func (parser *Parser) ParseProgram() (*ProgramAst, error) {
	if parser.diagnostics == nil {
		parser.diagnostics = &Diagnostics{}
	}
	program := &ProgramAst{}
	var err error
	program.Namespaces, program.Consts, program.Vars, program.Funcs, err = parser.parseDeclarations()
	if err == nil && parser.hasRemainTokens() {
		err = parser.makeError("namespace, const, var or func")
	}
	// Statement errors recovered from before a fatal one are reported too.
	if err != nil {
		return nil, errors.Join(parser.diagnostics.Err(), err)
	}
	if err = parser.diagnostics.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

func (parser *Parser) parseDeclarations() (namespaces []*NamespaceAst, consts []*ConstDeclAst,
	vars []*VarDeclAst, funcs []*FuncDeclAst, err error) {
	for parser.isCurrentToken(NamespaceTP) {
		namespace, err := parser.parseNamespace()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		namespaces = append(namespaces, namespace)
	}
	if consts, err = parser.parseConstDeclarations(); err != nil {
		return
	}
	if vars, err = parser.parseVarDeclarations(); err != nil {
		return
	}
	for parser.isCurrentToken(FuncTP) {
		fn, err := parser.parseFuncDeclaration()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		funcs = append(funcs, fn)
	}
	return
}

// namespace NIDENT declarations end
func (parser *Parser) parseNamespace() (*NamespaceAst, error) {
	namespaceToken, _ := parser.expectToken(NamespaceTP, true)
	nameToken, match := parser.expectToken(NamespaceIdentifierTP, true)
	if !match {
		return nil, parser.makeError("namespace name")
	}
	namespace := &NamespaceAst{Name: nameToken.content, Line: namespaceToken.line}
	var err error
	namespace.Namespaces, namespace.Consts, namespace.Vars, namespace.Funcs, err = parser.parseDeclarations()
	if err != nil {
		return nil, err
	}
	if _, match = parser.expectToken(EndTP, true); !match {
		return nil, parser.makeError("end")
	}
	return namespace, nil
}

// const LIDENT := NUMBER [, LIDENT := NUMBER]*
func (parser *Parser) parseConstDeclarations() (consts []*ConstDeclAst, err error) {
	if _, match := parser.expectToken(ConstTP, true); !match {
		return nil, nil
	}
	for {
		nameToken, match := parser.expectToken(LocalIdentifierTP, true)
		if !match {
			return nil, parser.makeError("constant name")
		}
		if _, match = parser.expectToken(DefineTP, true); !match {
			return nil, parser.makeError(":=")
		}
		value, err := parser.parseNumber()
		if err != nil {
			return nil, err
		}
		consts = append(consts, &ConstDeclAst{Name: nameToken.content, Value: value, Line: nameToken.line})
		if _, match = parser.expectToken(CommaTP, true); !match {
			return consts, nil
		}
	}
}

// var LIDENT [, LIDENT]*
func (parser *Parser) parseVarDeclarations() (vars []*VarDeclAst, err error) {
	if _, match := parser.expectToken(VarTP, true); !match {
		return nil, nil
	}
	for {
		nameToken, match := parser.expectToken(LocalIdentifierTP, true)
		if !match {
			return nil, parser.makeError("variable name")
		}
		vars = append(vars, &VarDeclAst{Name: nameToken.content, Line: nameToken.line})
		if _, match = parser.expectToken(CommaTP, true); !match {
			return vars, nil
		}
	}
}

// func LIDENT ( params ) [const consts] [var vars] begin stmts end
func (parser *Parser) parseFuncDeclaration() (*FuncDeclAst, error) {
	funcToken, _ := parser.expectToken(FuncTP, true)
	nameToken, match := parser.expectToken(LocalIdentifierTP, true)
	if !match {
		return nil, parser.makeError("function name")
	}
	fn := &FuncDeclAst{Name: nameToken.content, Line: funcToken.line}
	params, err := parser.parseFuncParamList()
	if err != nil {
		return nil, err
	}
	fn.Params = params
	if fn.Consts, err = parser.parseConstDeclarations(); err != nil {
		return nil, err
	}
	if fn.Vars, err = parser.parseVarDeclarations(); err != nil {
		return nil, err
	}
	if _, match = parser.expectToken(BeginTP, true); !match {
		return nil, parser.makeError("begin")
	}
	if fn.Body, err = parser.parseStatements(EndTP); err != nil {
		return nil, err
	}
	if _, match = parser.expectToken(EndTP, true); !match {
		return nil, parser.makeError("end")
	}
	return fn, nil
}

// ( [LIDENT [, LIDENT]*] )
func (parser *Parser) parseFuncParamList() (params []string, err error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError("(")
	}
	params = []string{}
	if _, match := parser.expectToken(RightParentThesesTP, true); match {
		return params, nil
	}
	for {
		paramToken, match := parser.expectToken(LocalIdentifierTP, true)
		if !match {
			return nil, parser.makeError("parameter name")
		}
		params = append(params, paramToken.content)
		if _, match = parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(")")
	}
	return params, nil
}

// stmt [; stmt]* [;], closed by the `closing` token which is left unconsumed.
// A statement that fails to parse is recorded and the parser skips to the next statement.
func (parser *Parser) parseStatements(closing TokenType) (stms []StatementAst, err error) {
	for parser.hasRemainTokens() && !parser.isCurrentToken(closing) && !parser.isCurrentToken(EndTP) {
		startPos := parser.currentTokenPos
		stm, err := parser.parseStatement()
		if err != nil {
			parser.skipToStatementBoundary(err, startPos, closing)
			continue
		}
		stms = append(stms, stm)
		if _, match := parser.expectToken(SemiColonTP, true); match {
			continue
		}
		if !parser.isCurrentToken(closing) {
			parser.skipToStatementBoundary(parser.makeError(";"), startPos, closing)
		}
	}
	if len(stms) == 0 && parser.diagnostics.Len() == 0 {
		return nil, parser.makeError("statement")
	}
	return stms, nil
}

// skipToStatementBoundary records err and skips tokens up to the next statement boundary: a `;` is consumed,
// the closing token is not.
func (parser *Parser) skipToStatementBoundary(err error, startPos int, closing TokenType) {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		parser.diagnostics.Add(compileErr.Line, compileErr.Msg)
	} else {
		parser.diagnostics.Add(0, err.Error())
	}
	if parser.currentTokenPos == startPos {
		parser.stepForward()
	}
	for parser.hasRemainTokens() {
		if parser.isCurrentToken(SemiColonTP) {
			parser.stepForward()
			return
		}
		if parser.isCurrentToken(closing) || parser.isCurrentToken(EndTP) {
			return
		}
		parser.stepForward()
	}
}

func (parser *Parser) parseStatement() (StatementAst, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case SkipTP:
		parser.stepForward()
		return &SkipStatementAst{Line: token.line}, nil
	case PrintTP:
		return parser.parsePrintStatement()
	case IfTP:
		return parser.parseIfStatement()
	case WhileTP:
		return parser.parseWhileStatement()
	case ReturnTP:
		return parser.parseReturnStatement()
	case LeftBraceTP:
		return parser.parseBlockStatement()
	case ColonTP, NamespaceIdentifierTP, LocalIdentifierTP:
		return parser.parseAssignLikeStatement()
	default:
		return nil, parser.makeError("statement")
	}
}

// print ( expr )
func (parser *Parser) parsePrintStatement() (StatementAst, error) {
	printToken, _ := parser.expectToken(PrintTP, true)
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError("(")
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(")")
	}
	return &PrintStatementAst{Value: value, Line: printToken.line}, nil
}

// if bexpr then stmt else stmt
func (parser *Parser) parseIfStatement() (StatementAst, error) {
	ifToken, _ := parser.expectToken(IfTP, true)
	condition, err := parser.parseBooleanExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(ThenTP, true); !match {
		return nil, parser.makeError("then")
	}
	thenStm, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(ElseTP, true); !match {
		return nil, parser.makeError("else")
	}
	elseStm, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &IfStatementAst{Condition: condition, Then: thenStm, Else: elseStm, Line: ifToken.line}, nil
}

// while bexpr do stmt
func (parser *Parser) parseWhileStatement() (StatementAst, error) {
	whileToken, _ := parser.expectToken(WhileTP, true)
	condition, err := parser.parseBooleanExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(DoTP, true); !match {
		return nil, parser.makeError("do")
	}
	body, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStatementAst{Condition: condition, Body: body, Line: whileToken.line}, nil
}

func (parser *Parser) parseReturnStatement() (StatementAst, error) {
	returnToken, _ := parser.expectToken(ReturnTP, true)
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ReturnStatementAst{Value: value, Line: returnToken.line}, nil
}

// { stmts }
func (parser *Parser) parseBlockStatement() (StatementAst, error) {
	braceToken, _ := parser.expectToken(LeftBraceTP, true)
	stms, err := parser.parseStatements(RightBraceTP)
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(RightBraceTP, true); !match {
		return nil, parser.makeError("}")
	}
	return &BlockStatementAst{Statements: stms, Line: braceToken.line}, nil
}

// ident <- read | ident <- call ident ( args ) | ident <- expr
func (parser *Parser) parseAssignLikeStatement() (StatementAst, error) {
	target, err := parser.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(AssignTP, true); !match {
		return nil, parser.makeError("<-")
	}
	if _, match := parser.expectToken(ReadTP, true); match {
		return &ReadStatementAst{Target: target, Line: target.Line}, nil
	}
	if _, match := parser.expectToken(CallTP, true); match {
		fn, err := parser.parseIdent()
		if err != nil {
			return nil, err
		}
		args, err := parser.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &CallStatementAst{Target: target, Func: fn, Args: args, Line: target.Line}, nil
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &AssignStatementAst{Target: target, Value: value, Line: target.Line}, nil
}

// ( [expr [, expr]*] )
func (parser *Parser) parseCallArgs() (args []ExpressionAst, err error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError("(")
	}
	args = []ExpressionAst{}
	if _, match := parser.expectToken(RightParentThesesTP, true); match {
		return args, nil
	}
	for {
		arg, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(")")
	}
	return args, nil
}

// [:] (NIDENT .)* LIDENT
func (parser *Parser) parseIdent() (*Ident, error) {
	ident := &Ident{Kind: RelativePath, Path: []string{}}
	if colonToken, match := parser.expectToken(ColonTP, true); match {
		ident.Kind, ident.Line = AbsolutePath, colonToken.line
	}
	for {
		if nameToken, match := parser.expectToken(LocalIdentifierTP, true); match {
			ident.Name = nameToken.content
			if ident.Line == 0 {
				ident.Line = nameToken.line
			}
			return ident, nil
		}
		nsToken, match := parser.expectToken(NamespaceIdentifierTP, true)
		if !match {
			return nil, parser.makeError("identifier")
		}
		if ident.Line == 0 {
			ident.Line = nsToken.line
		}
		ident.Path = append(ident.Path, nsToken.content)
		if _, match = parser.expectToken(DotTP, true); !match {
			return nil, parser.makeError(".")
		}
	}
}

// bexpr : bterm [or bterm]*
func (parser *Parser) parseBooleanExpression() (ExpressionAst, error) {
	return parser.parseLeftAssociative(parser.parseBooleanTerm, OrTP)
}

// bterm : bfactor [and bfactor]*
func (parser *Parser) parseBooleanTerm() (ExpressionAst, error) {
	return parser.parseLeftAssociative(parser.parseBooleanFactor, AndTP)
}

// bfactor : expr cmp expr | ( bexpr )
// A leading `(` can open either alternative, so the comparison is tried first and the parser
// backtracks to the parenthesised boolean expression when it fails.
func (parser *Parser) parseBooleanFactor() (ExpressionAst, error) {
	startPos := parser.currentTokenPos
	comparison, cmpErr := parser.parseComparison()
	if cmpErr == nil || !parser.isTokenAt(startPos, LeftParentThesesTP) {
		return comparison, cmpErr
	}
	parser.currentTokenPos = startPos
	parser.stepForward()
	inner, err := parser.parseBooleanExpression()
	if err != nil {
		return nil, cmpErr
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(")")
	}
	return inner, nil
}

func (parser *Parser) parseComparison() (ExpressionAst, error) {
	left, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case EqualTP, NotEqualTP, LessTP, LessEqualTP, GreaterTP, GreaterEqualTP:
	default:
		return nil, parser.makeError("comparison operator")
	}
	parser.stepForward()
	right, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &BinaryExpressionAst{Op: tokenOpCodeMap[token.tp], Left: left, Right: right}, nil
}

// expr : term [(+|-) term]*
func (parser *Parser) parseExpression() (ExpressionAst, error) {
	return parser.parseLeftAssociative(parser.parseTerm, AddTP, MinusTP)
}

// term : factor [(*|/|%) factor]*
func (parser *Parser) parseTerm() (ExpressionAst, error) {
	return parser.parseLeftAssociative(parser.parseFactor, MultiplyTP, DivideTP, ModTP)
}

func (parser *Parser) parseLeftAssociative(operand func() (ExpressionAst, error),
	ops ...TokenType) (ExpressionAst, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		opToken, match := parser.expectOneOf(ops...)
		if !match {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpressionAst{Op: tokenOpCodeMap[opToken.tp], Left: left, Right: right}
	}
}

// factor : ident | NUMBER | ( expr )
func (parser *Parser) parseFactor() (ExpressionAst, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case IntegerTP:
		value, err := parser.parseNumber()
		if err != nil {
			return nil, err
		}
		return &NumberExpressionAst{Value: value, Line: token.line}, nil
	case LeftParentThesesTP:
		parser.stepForward()
		inner, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, match := parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.makeError(")")
		}
		return inner, nil
	case ColonTP, NamespaceIdentifierTP, LocalIdentifierTP:
		ident, err := parser.parseIdent()
		if err != nil {
			return nil, err
		}
		return &VarExpressionAst{Ident: ident}, nil
	default:
		return nil, parser.makeError("expression")
	}
}

func (parser *Parser) parseNumber() (int64, error) {
	numberToken, match := parser.expectToken(IntegerTP, true)
	if !match {
		return 0, parser.makeError("number")
	}
	value, err := strconv.ParseInt(numberToken.content, 10, 64)
	if err != nil {
		return 0, newSyntaxError(numberToken.line, fmt.Sprintf("number %s out of range", numberToken.content))
	}
	return value, nil
}

func (parser *Parser) getCurrentToken() (*Token, error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeError("more tokens")
	}
	return parser.currentTokens[parser.currentTokenPos], nil
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

func (parser *Parser) isCurrentToken(tp TokenType) bool {
	return parser.isTokenAt(parser.currentTokenPos, tp)
}

func (parser *Parser) isTokenAt(pos int, tp TokenType) bool {
	return pos < len(parser.currentTokens) && parser.currentTokens[pos].tp == tp
}

func (parser *Parser) expectToken(expectedTokenTp TokenType, walk bool) (*Token, bool) {
	if !parser.isCurrentToken(expectedTokenTp) {
		return nil, false
	}
	token := parser.currentTokens[parser.currentTokenPos]
	if walk {
		parser.currentTokenPos++
	}
	return token, true
}

func (parser *Parser) expectOneOf(expectedTokenTPs ...TokenType) (*Token, bool) {
	for _, tp := range expectedTokenTPs {
		if token, match := parser.expectToken(tp, true); match {
			return token, true
		}
	}
	return nil, false
}

func (parser *Parser) makeError(expected string) error {
	if !parser.hasRemainTokens() {
		line := 0
		if len(parser.currentTokens) > 0 {
			line = parser.currentTokens[len(parser.currentTokens)-1].line
		}
		return newSyntaxError(line, fmt.Sprintf("unexpected end of input, expect %s", expected))
	}
	currentToken := parser.currentTokens[parser.currentTokenPos]
	return newSyntaxError(currentToken.line, fmt.Sprintf("unexpected %s at column %d, expect %s",
		currentToken.content, currentToken.column(), expected))
}
