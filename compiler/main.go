package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"toypl/compiler/internal"
)

var (
	path        = flag.String("path", "", "the path of the toypl file to compile")
	stage       = flag.String("stage", "ir", "the output to print: resolve or ir")
	verbose     = flag.Bool("verbose", false, "print the progress of every compiler stage")
	interactive = flag.Bool("i", false, "read programs from an interactive prompt")
)

const (
	historyFile = ".toypl_history"
	promptMain  = "toypl> "
	promptCont  = "   ... "
)

func main() {
	flag.Parse()
	internal.Verbose = *verbose
	st, err := internal.ParseStage(*stage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(2)
	}
	if *interactive {
		os.Exit(repl(st))
	}
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err = internal.Compile(*path, os.Stdout, st); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// repl reads one program at a time, ended by an empty line, and prints its output.
func repl(st internal.Stage) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readProgram(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		cmd := strings.TrimSpace(src)
		switch {
		case cmd == "":
			continue
		case cmd == ":quit":
			return 0
		case strings.HasPrefix(cmd, ":stage"):
			next, err := internal.ParseStage(strings.TrimSpace(strings.TrimPrefix(cmd, ":stage")))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			st = next
			continue
		case strings.HasPrefix(cmd, ":"):
			fmt.Println("unknown command. Type :stage ir|resolve or :quit.")
			continue
		}
		if err := internal.CompileSource(strings.NewReader(src), os.Stdout, st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readProgram collects lines until an empty one. Commands starting with `:` are a single line.
func readProgram(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
