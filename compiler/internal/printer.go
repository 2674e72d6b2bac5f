package internal

import (
	"fmt"
	"io"
	"strings"
)

// PrintProgram writes one block per function:
//
//	func :Util.next_prime(n) {
//		t0 <- 0
//		p <- t0
//	L0:
//		...
//	}
//
// Blocks are separated by an empty line.
func PrintProgram(w io.Writer, program *IRProgram) error {
	var sb strings.Builder
	for i, fn := range program.Funcs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeFuncCode(&sb, fn)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeFuncCode(sb *strings.Builder, fn *FuncCode) {
	fmt.Fprintf(sb, "func %s(%s) {\n", fn.Name, strings.Join(fn.Params, ", "))
	for _, ins := range fn.Instructions {
		if _, isLabel := ins.(*LabelInstruction); !isLabel {
			sb.WriteByte('\t')
		}
		sb.WriteString(ins.String())
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
}

// PrintResolution writes the globals, then every function with its resolved body in ToyPL syntax.
func PrintResolution(w io.Writer, resolution *Resolution) error {
	var sb strings.Builder
	for _, name := range resolution.Globals.Names() {
		value, _ := resolution.Globals.Lookup(name)
		if value == nil {
			fmt.Fprintf(&sb, "global %s\n", name)
			continue
		}
		fmt.Fprintf(&sb, "global %s = %d\n", name, *value)
	}
	for i, fn := range resolution.Funcs {
		if i > 0 || resolution.Globals.Len() > 0 {
			sb.WriteByte('\n')
		}
		writeResolvedFunc(&sb, fn)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeResolvedFunc(sb *strings.Builder, fn *ResolvedFunc) {
	fmt.Fprintf(sb, "func %s(%s)\n", fn.Name, strings.Join(fn.Params, ", "))
	if len(fn.Consts) > 0 {
		consts := make([]string, 0, len(fn.Consts))
		for _, c := range fn.Consts {
			consts = append(consts, fmt.Sprintf("%s := %d", c.Name, c.Value))
		}
		fmt.Fprintf(sb, "const %s\n", strings.Join(consts, ", "))
	}
	if len(fn.Vars) > 0 {
		fmt.Fprintf(sb, "var %s\n", strings.Join(fn.Vars, ", "))
	}
	sb.WriteString("begin\n")
	writeStatements(sb, fn.Body, 1)
	sb.WriteString("end\n")
}

func writeStatements(sb *strings.Builder, statements []StatementAst, depth int) {
	for i, stm := range statements {
		sb.WriteString(strings.Repeat("\t", depth))
		writeStatement(sb, stm, depth)
		if i < len(statements)-1 {
			sb.WriteByte(';')
		}
		sb.WriteByte('\n')
	}
}

// writeStatement writes stm without its leading indentation and trailing newline.
func writeStatement(sb *strings.Builder, statement StatementAst, depth int) {
	switch stm := statement.(type) {
	case *SkipStatementAst:
		sb.WriteString("skip")
	case *ReadStatementAst:
		fmt.Fprintf(sb, "%s <- read", stm.Target)
	case *PrintStatementAst:
		fmt.Fprintf(sb, "print(%s)", expressionString(stm.Value))
	case *AssignStatementAst:
		fmt.Fprintf(sb, "%s <- %s", stm.Target, expressionString(stm.Value))
	case *CallStatementAst:
		args := make([]string, 0, len(stm.Args))
		for _, arg := range stm.Args {
			args = append(args, expressionString(arg))
		}
		fmt.Fprintf(sb, "%s <- call %s(%s)", stm.Target, stm.Func, strings.Join(args, ", "))
	case *IfStatementAst:
		fmt.Fprintf(sb, "if %s then\n%s", expressionString(stm.Condition), strings.Repeat("\t", depth+1))
		writeStatement(sb, stm.Then, depth+1)
		fmt.Fprintf(sb, "\n%selse\n%s", strings.Repeat("\t", depth), strings.Repeat("\t", depth+1))
		writeStatement(sb, stm.Else, depth+1)
	case *WhileStatementAst:
		fmt.Fprintf(sb, "while %s do\n%s", expressionString(stm.Condition), strings.Repeat("\t", depth+1))
		writeStatement(sb, stm.Body, depth+1)
	case *ReturnStatementAst:
		fmt.Fprintf(sb, "return %s", expressionString(stm.Value))
	case *BlockStatementAst:
		sb.WriteString("{\n")
		writeStatements(sb, stm.Statements, depth+1)
		sb.WriteString(strings.Repeat("\t", depth) + "}")
	default:
		fmt.Fprintf(sb, "<%T>", statement)
	}
}

func expressionString(expression ExpressionAst) string {
	switch expr := expression.(type) {
	case *VarExpressionAst:
		return expr.Ident.String()
	case *NumberExpressionAst:
		return fmt.Sprintf("%d", expr.Value)
	case *BinaryExpressionAst:
		return fmt.Sprintf("%s %s %s", operandString(expr.Left), expr.Op, operandString(expr.Right))
	default:
		return fmt.Sprintf("<%T>", expression)
	}
}

// Nested operators are parenthesised so the printed text does not depend on precedence.
func operandString(expression ExpressionAst) string {
	if _, ok := expression.(*BinaryExpressionAst); ok {
		return "(" + expressionString(expression) + ")"
	}
	return expressionString(expression)
}
