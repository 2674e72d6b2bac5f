package internal

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FuncCodeGenerator lowers the body of one function into a flat instruction list.
// Temporaries and labels are numbered from 0 for every function.
type FuncCodeGenerator struct {
	code           []Instruction
	tempIndicator  int
	labelIndicator int
}

// Generate lowers every function of resolution. Functions share nothing, so they are lowered
// concurrently; the result keeps the resolver's function order. When several functions fail,
// the error of the first one in that order is returned.
func Generate(resolution *Resolution) (*IRProgram, error) {
	funcs := make([]*FuncCode, len(resolution.Funcs))
	errs := make([]error, len(resolution.Funcs))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, fn := range resolution.Funcs {
		group.Go(func() error {
			funcs[i], errs[i] = GenerateFunction(fn)
			return nil
		})
	}
	_ = group.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &IRProgram{Globals: resolution.Globals, Funcs: funcs}, nil
}

func GenerateFunction(fn *ResolvedFunc) (*FuncCode, error) {
	generator := &FuncCodeGenerator{}
	if err := generator.generateStatementsCode(fn.Body); err != nil {
		return nil, err
	}
	return &FuncCode{Name: fn.Name, Params: fn.Params, Instructions: generator.code}, nil
}

func (generator *FuncCodeGenerator) newTemp() string {
	temp := tempName(generator.tempIndicator)
	generator.tempIndicator++
	return temp
}

func (generator *FuncCodeGenerator) newLabel() int {
	label := generator.labelIndicator
	generator.labelIndicator++
	return label
}

func (generator *FuncCodeGenerator) writeOutput(ins Instruction) {
	generator.code = append(generator.code, ins)
}

func (generator *FuncCodeGenerator) generateStatementsCode(statements []StatementAst) error {
	for _, stm := range statements {
		if err := generator.generateStatementCode(stm); err != nil {
			return err
		}
	}
	return nil
}

func (generator *FuncCodeGenerator) generateStatementCode(statement StatementAst) error {
	switch stm := statement.(type) {
	case *SkipStatementAst:
		return nil
	case *ReadStatementAst:
		dest, err := resolvedName(stm.Target)
		if err != nil {
			return err
		}
		generator.writeOutput(&ReadInstruction{Dest: dest})
		return nil
	case *PrintStatementAst:
		value, err := generator.generateExpressionCode(stm.Value)
		if err != nil {
			return err
		}
		generator.writeOutput(&PrintInstruction{Value: value})
		return nil
	case *AssignStatementAst:
		return generator.generateAssignStatementCode(stm)
	case *CallStatementAst:
		return generator.generateCallStatementCode(stm)
	case *IfStatementAst:
		return generator.generateIfStatementCode(stm)
	case *WhileStatementAst:
		return generator.generateWhileStatementCode(stm)
	case *ReturnStatementAst:
		value, err := generator.generateExpressionCode(stm.Value)
		if err != nil {
			return err
		}
		generator.writeOutput(&ReturnInstruction{Value: value})
		return nil
	case *BlockStatementAst:
		return generator.generateStatementsCode(stm.Statements)
	default:
		return makeMalformedTreeError(0, "unknown statement %T", statement)
	}
}

// The value is computed first, then stored: `x <- 0` becomes `t0 <- 0; x <- t0`.
func (generator *FuncCodeGenerator) generateAssignStatementCode(stm *AssignStatementAst) error {
	dest, err := resolvedName(stm.Target)
	if err != nil {
		return err
	}
	value, err := generator.generateExpressionCode(stm.Value)
	if err != nil {
		return err
	}
	generator.writeOutput(&AssignInstruction{Dest: dest, Value: &RefRvalue{Name: value}})
	return nil
}

func (generator *FuncCodeGenerator) generateCallStatementCode(stm *CallStatementAst) error {
	dest, err := resolvedName(stm.Target)
	if err != nil {
		return err
	}
	fn, err := resolvedName(stm.Func)
	if err != nil {
		return err
	}
	args := make([]string, 0, len(stm.Args))
	for _, arg := range stm.Args {
		value, err := generator.generateExpressionCode(arg)
		if err != nil {
			return err
		}
		args = append(args, value)
	}
	generator.writeOutput(&CallInstruction{Dest: dest, Func: fn, Args: args})
	return nil
}

// condition code
// branch c L_then L_else
// L_then:
// then code
// jump L_join
// L_else:
// else code
// L_join:
func (generator *FuncCodeGenerator) generateIfStatementCode(stm *IfStatementAst) error {
	cond, err := generator.generateExpressionCode(stm.Condition)
	if err != nil {
		return err
	}
	thenLabel, elseLabel, joinLabel := generator.newLabel(), generator.newLabel(), generator.newLabel()
	generator.writeOutput(&BranchInstruction{Cond: cond, Then: thenLabel, Else: elseLabel})
	generator.writeOutput(&LabelInstruction{Label: thenLabel})
	if err = generator.generateBranchCode(stm.Then); err != nil {
		return err
	}
	generator.writeOutput(&JumpInstruction{Target: joinLabel})
	generator.writeOutput(&LabelInstruction{Label: elseLabel})
	if err = generator.generateBranchCode(stm.Else); err != nil {
		return err
	}
	generator.writeOutput(&LabelInstruction{Label: joinLabel})
	return nil
}

// A missing arm is an empty statement.
func (generator *FuncCodeGenerator) generateBranchCode(stm StatementAst) error {
	if stm == nil {
		return nil
	}
	return generator.generateStatementCode(stm)
}

// L_head:
// condition code
// branch c L_body L_exit
// L_body:
// body code
// jump L_head
// L_exit:
// The condition is evaluated again on every iteration.
func (generator *FuncCodeGenerator) generateWhileStatementCode(stm *WhileStatementAst) error {
	headLabel, bodyLabel, exitLabel := generator.newLabel(), generator.newLabel(), generator.newLabel()
	generator.writeOutput(&LabelInstruction{Label: headLabel})
	cond, err := generator.generateExpressionCode(stm.Condition)
	if err != nil {
		return err
	}
	generator.writeOutput(&BranchInstruction{Cond: cond, Then: bodyLabel, Else: exitLabel})
	generator.writeOutput(&LabelInstruction{Label: bodyLabel})
	if err = generator.generateBranchCode(stm.Body); err != nil {
		return err
	}
	generator.writeOutput(&JumpInstruction{Target: headLabel})
	generator.writeOutput(&LabelInstruction{Label: exitLabel})
	return nil
}

// generateExpressionCode returns the name holding the value of expr. Names are used as they are,
// every literal and every operator result gets a fresh temporary. A post order traversal is enough:
//
//	n + 1   =>   t0 <- 1
//	             t1 <- n + t0
//
// `and` and `or` are plain operators here, there is no short circuit.
func (generator *FuncCodeGenerator) generateExpressionCode(expression ExpressionAst) (string, error) {
	switch expr := expression.(type) {
	case *VarExpressionAst:
		return resolvedName(expr.Ident)
	case *NumberExpressionAst:
		temp := generator.newTemp()
		generator.writeOutput(&AssignInstruction{Dest: temp, Value: &ConstRvalue{Value: expr.Value}})
		return temp, nil
	case *BinaryExpressionAst:
		left, err := generator.generateExpressionCode(expr.Left)
		if err != nil {
			return "", err
		}
		right, err := generator.generateExpressionCode(expr.Right)
		if err != nil {
			return "", err
		}
		temp := generator.newTemp()
		generator.writeOutput(&AssignInstruction{Dest: temp, Value: &BinaryRvalue{Op: expr.Op, Left: left, Right: right}})
		return temp, nil
	default:
		return "", makeMalformedTreeError(0, "unknown expression %T", expression)
	}
}

func resolvedName(ident *Ident) (string, error) {
	if ident == nil {
		return "", makeMalformedTreeError(0, "missing identifier")
	}
	if ident.Kind != ResolvedPath {
		return "", makeMalformedTreeError(ident.Line, "identifier %s is not resolved", ident)
	}
	return ident.Name, nil
}
