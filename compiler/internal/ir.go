package internal

import (
	"fmt"
	"strings"
)

// Instruction is one of *AssignInstruction, *CallInstruction, *PrintInstruction, *ReadInstruction,
// *LabelInstruction, *JumpInstruction, *BranchInstruction or *ReturnInstruction.
// Operands are names: bare locals, canonical globals or temporaries `tN`.
type Instruction interface {
	instruction()
	String() string
}

// Rvalue is the right hand side of an assignment: *ConstRvalue, *RefRvalue or *BinaryRvalue.
type Rvalue interface {
	rvalue()
	String() string
}

type ConstRvalue struct {
	Value int64
}

type RefRvalue struct {
	Name string
}

type BinaryRvalue struct {
	Op    OpCode
	Left  string
	Right string
}

func (*ConstRvalue) rvalue()  {}
func (*RefRvalue) rvalue()    {}
func (*BinaryRvalue) rvalue() {}

func (r *ConstRvalue) String() string  { return fmt.Sprintf("%d", r.Value) }
func (r *RefRvalue) String() string    { return r.Name }
func (r *BinaryRvalue) String() string { return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right) }

type AssignInstruction struct {
	Dest  string
	Value Rvalue
}

type CallInstruction struct {
	Dest string
	Func string
	Args []string
}

type PrintInstruction struct {
	Value string
}

type ReadInstruction struct {
	Dest string
}

type LabelInstruction struct {
	Label int
}

type JumpInstruction struct {
	Target int
}

type BranchInstruction struct {
	Cond string
	Then int
	Else int
}

type ReturnInstruction struct {
	Value string
}

func (*AssignInstruction) instruction() {}
func (*CallInstruction) instruction()   {}
func (*PrintInstruction) instruction()  {}
func (*ReadInstruction) instruction()   {}
func (*LabelInstruction) instruction()  {}
func (*JumpInstruction) instruction()   {}
func (*BranchInstruction) instruction() {}
func (*ReturnInstruction) instruction() {}

func labelName(label int) string {
	return fmt.Sprintf("L%d", label)
}

func tempName(temp int) string {
	return fmt.Sprintf("t%d", temp)
}

func (ins *AssignInstruction) String() string {
	return fmt.Sprintf("%s <- %s", ins.Dest, ins.Value)
}

func (ins *CallInstruction) String() string {
	return fmt.Sprintf("%s <- call %s(%s)", ins.Dest, ins.Func, strings.Join(ins.Args, ", "))
}

func (ins *PrintInstruction) String() string {
	return "print " + ins.Value
}

func (ins *ReadInstruction) String() string {
	return ins.Dest + " <- read"
}

func (ins *LabelInstruction) String() string {
	return labelName(ins.Label) + ":"
}

func (ins *JumpInstruction) String() string {
	return "jump " + labelName(ins.Target)
}

func (ins *BranchInstruction) String() string {
	return fmt.Sprintf("branch %s %s %s", ins.Cond, labelName(ins.Then), labelName(ins.Else))
}

func (ins *ReturnInstruction) String() string {
	return "return " + ins.Value
}

// FuncCode is the lowered code of one function.
type FuncCode struct {
	Name         string
	Params       []string
	Instructions []Instruction
}

// IRProgram is the whole lowered program. Funcs keep the resolver's order.
type IRProgram struct {
	Globals *GlobalVariables
	Funcs   []*FuncCode
}

func (program *IRProgram) Func(name string) *FuncCode {
	for _, fn := range program.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
