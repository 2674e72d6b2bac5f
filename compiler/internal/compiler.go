package internal

import (
	"fmt"
	"io"
	"os"
)

type Stage int

const (
	ResolveStage Stage = iota
	IRStage
)

func ParseStage(name string) (Stage, error) {
	switch name {
	case "resolve":
		return ResolveStage, nil
	case "ir":
		return IRStage, nil
	}
	return 0, fmt.Errorf("unknown stage %q, expect resolve or ir", name)
}

func (stage Stage) String() string {
	if stage == ResolveStage {
		return "resolve"
	}
	return "ir"
}

// Verbose turns on the progress lines of the pipeline.
var Verbose = false

var logOutput io.Writer = os.Stderr

func logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(logOutput, "compiler: "+format+"\n", args...)
}

func Compile(path string, w io.Writer, stage Stage) error {
	logf("start parser at path: %s", path)
	rd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer rd.Close()
	return CompileSource(rd, w, stage)
}

// CompileSource runs the whole pipeline on rd and writes the output of stage to w.
func CompileSource(rd io.Reader, w io.Writer, stage Stage) error {
	parser := &Parser{}
	program, err := parser.Parse(rd)
	if err != nil {
		return err
	}
	logf("start name resolution")
	resolution, err := Resolve(program)
	if err != nil {
		return err
	}
	logf("resolved %d globals, %d funcs", resolution.Globals.Len(), len(resolution.Funcs))
	if stage == ResolveStage {
		return PrintResolution(w, resolution)
	}
	logf("start generate codes")
	irProgram, err := Generate(resolution)
	if err != nil {
		return err
	}
	return PrintProgram(w, irProgram)
}
