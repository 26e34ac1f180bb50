// Command ember is the CLI driver for the language: no arguments opens
// a REPL, one argument runs a source file, and `-c <source>` runs an
// inline script, per SPEC_FULL.md §6.1.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/emberlang/ember"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitUsageError   = 64
)

func main() {
	switch len(os.Args) {
	case 1:
		runREPL()
	case 2:
		runFile(os.Args[1])
	case 3:
		if os.Args[1] != "-c" {
			usageError()
		}
		runSource(os.Args[2])
	default:
		usageError()
	}
}

func usageError() {
	fmt.Fprintln(os.Stderr, "usage: ember [script] | ember -c <source>")
	os.Exit(exitUsageError)
}

func runFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(exitUsageError)
	}
	exitFor(runSourceQuiet(string(data)))
}

func runSource(src string) {
	exitFor(runSourceQuiet(src))
}

func runSourceQuiet(src string) ember.Result {
	return ember.Interpret(src)
}

func exitFor(r ember.Result) {
	switch r {
	case ember.ResultOK:
		os.Exit(exitOK)
	case ember.ResultCompileError:
		os.Exit(exitCompileError)
	case ember.ResultRuntimeError:
		os.Exit(exitRuntimeError)
	}
}

// runREPL reads one line at a time, interprets it immediately, and
// loops until EOF. All lines share one VM, so globals persist from one
// line to the next; after a runtime error the VM has already reset its
// stack, frames and open upvalues (spec.md §7). Compile errors and
// runtime errors are reported but never exit the process.
func runREPL() {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		runREPLInteractive()
		return
	}
	runREPLPiped()
}

func runREPLInteractive() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("ember %s\n", "0.1.0")
	v := ember.NewVM()
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			break
		}
		line.AppendHistory(input)
		if input == "" {
			continue
		}
		ember.InterpretIn(v, input, os.Stdout, os.Stderr)
	}
}

func runREPLPiped() {
	v := ember.NewVM()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		ember.InterpretIn(v, line, os.Stdout, os.Stderr)
	}
}
