package internal

import (
	"bufio"
	"fmt"
	"io"
	"toypl/util"
	"unicode"
)

// A simple Tokenizer for ToyPL.

// ToyPL has those elements:
// * KeyWord: namespace, end, const, var, func, begin, skip, read, print, call, if, then, else,
// 			while, do, return, and, or.
// * Symbol: <-, :=, :, ., ,, ;, (, ), {, }, +, -, *, /, %, ==, /=, <, <=, >, >=.
// * Constant: integer.
// * Identifier: a namespace identifier starts with an upper case letter, a local identifier starts
// 			with a lower case letter or underscore.
// * Comment: //.

type TokenType int

const (
	NamespaceTP     TokenType = iota // namespace
	EndTP                            // end
	ConstTP                          // const
	VarTP                            // var
	FuncTP                           // func
	BeginTP                          // begin
	SkipTP                           // skip
	ReadTP                           // read
	PrintTP                          // print
	CallTP                           // call
	IfTP                             // if
	ThenTP                           // then
	ElseTP                           // else
	WhileTP                          // while
	DoTP                             // do
	ReturnTP                         // return
	AndTP                            // and
	OrTP                             // or
	AssignTP                         // <-
	DefineTP                         // :=
	ColonTP                          // :
	DotTP                            // .
	CommaTP                          // ,
	SemiColonTP                      // ;
	LeftParentThesesTP               // (
	RightParentThesesTP              // )
	LeftBraceTP                      // {
	RightBraceTP                     // }
	AddTP                            // +
	MinusTP                          // -
	MultiplyTP                       // *
	DivideTP                         // /
	ModTP                            // %
	EqualTP                          // ==
	NotEqualTP                       // /=
	LessTP                           // <
	LessEqualTP                      // <=
	GreaterTP                        // >
	GreaterEqualTP                   // >=
	IntegerTP                        // 1010
	NamespaceIdentifierTP            // Util
	LocalIdentifierTP                // next_prime
	SingleLineCommentTP              // //
)

var tokenTypeNames = map[TokenType]string{
	NamespaceTP: "namespace", EndTP: "end", ConstTP: "const", VarTP: "var", FuncTP: "func",
	BeginTP: "begin", SkipTP: "skip", ReadTP: "read", PrintTP: "print", CallTP: "call", IfTP: "if",
	ThenTP: "then", ElseTP: "else", WhileTP: "while", DoTP: "do", ReturnTP: "return", AndTP: "and",
	OrTP: "or", AssignTP: "<-", DefineTP: ":=", ColonTP: ":", DotTP: ".", CommaTP: ",",
	SemiColonTP: ";", LeftParentThesesTP: "(", RightParentThesesTP: ")", LeftBraceTP: "{",
	RightBraceTP: "}", AddTP: "+", MinusTP: "-", MultiplyTP: "*", DivideTP: "/", ModTP: "%",
	EqualTP: "==", NotEqualTP: "/=", LessTP: "<", LessEqualTP: "<=", GreaterTP: ">",
	GreaterEqualTP: ">=", IntegerTP: "number", NamespaceIdentifierTP: "namespace identifier",
	LocalIdentifierTP: "identifier", SingleLineCommentTP: "comment",
}

func (tp TokenType) String() string {
	if name, ok := tokenTypeNames[tp]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(tp))
}

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"namespace": NamespaceTP,
	"end":       EndTP,
	"const":     ConstTP,
	"var":       VarTP,
	"func":      FuncTP,
	"begin":     BeginTP,
	"skip":      SkipTP,
	"read":      ReadTP,
	"print":     PrintTP,
	"call":      CallTP,
	"if":        IfTP,
	"then":      ThenTP,
	"else":      ElseTP,
	"while":     WhileTP,
	"do":        DoTP,
	"return":    ReturnTP,
	"and":       AndTP,
	"or":        OrTP,
}

// twoCharSymbolTokenTPMap must be tried before simpleSymbolTokenTPMap, since every two char
// symbol starts with a simple one.
var twoCharSymbolTokenTPMap = map[string]TokenType{
	"<-": AssignTP,
	":=": DefineTP,
	"==": EqualTP,
	"/=": NotEqualTP,
	"<=": LessEqualTP,
	">=": GreaterEqualTP,
}

var simpleSymbolTokenTPMap = map[string]TokenType{
	":": ColonTP,
	".": DotTP,
	",": CommaTP,
	";": SemiColonTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"{": LeftBraceTP,
	"}": RightBraceTP,
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
	"/": DivideTP,
	"%": ModTP,
	"<": LessTP,
	">": GreaterTP,
}

type Token struct {
	content  string
	line     int
	startPos int
	tp       TokenType
}

// column is the 1-based column the token starts at.
func (t *Token) column() int {
	return t.startPos + 1
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.tp, t.content, t.line)
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token
}

// getNextToken returns the next token from line, or nil when line is exhausted.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	tokenizer.trimSpace(line)
	if !tokenizer.hasRemainCharacters(line) {
		return nil, nil
	}
	c := line[tokenizer.currentPos]
	switch {
	case c == '/' && tokenizer.peek(line, 1) == '/':
		return tokenizer.tokenSingleLineComment(line)
	case util.IsNumber(c):
		return tokenizer.tokenNumber(line)
	case util.IsLetter(c) || util.IsUnderScore(c):
		return tokenizer.toKeywordOrIdentifier(line)
	default:
		return tokenizer.tokenSymbol(line)
	}
}

func (tokenizer *Tokenizer) peek(line []byte, offset int) byte {
	if tokenizer.currentPos+offset >= len(line) {
		return 0
	}
	return line[tokenizer.currentPos+offset]
}

// trimSpace will step forward through line and skip all continuous space.
func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) {
		if unicode.IsSpace(rune(line[tokenizer.currentPos])) {
			tokenizer.currentPos++
			continue
		}
		break
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) tokenSymbol(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	if tokenizer.currentPos+1 < len(line) {
		symbol := string(line[startPos : startPos+2])
		if tp, ok := twoCharSymbolTokenTPMap[symbol]; ok {
			tokenizer.currentPos += 2
			return tokenizer.makeToken(symbol, tp, startPos), nil
		}
	}
	symbol := string(line[startPos])
	tp, ok := simpleSymbolTokenTPMap[symbol]
	if !ok {
		return nil, tokenizer.makeError(symbol, tokenizer.currentLine, "unknown symbol")
	}
	tokenizer.currentPos++
	return tokenizer.makeToken(symbol, tp, startPos), nil
}

func (tokenizer *Tokenizer) tokenSingleLineComment(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos = len(line)
	return tokenizer.makeToken(string(line[startPos:]), SingleLineCommentTP, startPos), nil
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	// 12abc is not a number followed by an identifier.
	if tokenizer.currentPos < len(line) && util.IsLetterOrUnderscoreOrNumber(line[tokenizer.currentPos]) {
		return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos+1]), tokenizer.currentLine,
			"incorrect number format")
	}
	return tokenizer.makeToken(string(line[startPos:tokenizer.currentPos]), IntegerTP, startPos), nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsLetterOrUnderscoreOrNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	word := string(line[startPos:tokenizer.currentPos])
	if keyWordTP, isKeyWord := keyWordTokenTPMap[word]; isKeyWord {
		return tokenizer.makeToken(word, keyWordTP, startPos), nil
	}
	if util.IsLowerOrUnderscore(word[0]) {
		return tokenizer.makeToken(word, LocalIdentifierTP, startPos), nil
	}
	return tokenizer.makeToken(word, NamespaceIdentifierTP, startPos), nil
}

func (tokenizer *Tokenizer) makeToken(content string, tp TokenType, startPos int) *Token {
	return &Token{
		content:  content,
		line:     tokenizer.currentLine,
		startPos: startPos,
		tp:       tp,
	}
}

func (tokenizer *Tokenizer) makeError(near string, line int, msg string) error {
	return newSyntaxError(line, fmt.Sprintf("tokenizer error near %s, msg: %s", near, msg))
}

// Tokenize accepts a source `rd` and tokenizes its content according to ToyPL rules.
// Comments are dropped.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	bfReader := bufio.NewReader(rd)
	tokenizer.currentLine = 0
	for {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		line, readErr := bfReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		if err := tokenizer.parseLine(line); err != nil {
			return nil, err
		}
		if readErr == io.EOF {
			return tokenizer.tokens, nil
		}
	}
}

func (tokenizer *Tokenizer) parseLine(line []byte) error {
	for {
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		if token.tp == SingleLineCommentTP {
			return nil
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.tokens = nil
}
