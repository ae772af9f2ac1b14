// Command toylang is the native Toylang CLI entry point: help, console,
// run, and format, exactly as the original interpreter's argv dispatch
// laid them out.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/toylang/pkg/diagnostics"
	"github.com/thomasrohde/toylang/pkg/formatter"
	"github.com/thomasrohde/toylang/pkg/help"
	"github.com/thomasrohde/toylang/pkg/runtime"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: toylang <help|console|run|format> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	case "console":
		os.Exit(cmdConsole())
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "format":
		os.Exit(cmdFormat(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdHelp(args []string) int {
	if len(args) == 0 {
		fmt.Print(help.QUICKREF)
		return 0
	}
	name, content, err := help.MatchTopic(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s\n%s\n", name, content)
	return 0
}

// cmdConsole implements the REPL protocol: lines accumulate into a
// buffer until a bare "EXEC" line runs it, or a bare "EXIT" line quits.
func cmdConsole() int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	rt := runtime.New()
	var buffer strings.Builder

	for {
		line, err := ln.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return 0
			}
			fmt.Fprintln(os.Stderr, err)
			return 0
		}
		ln.AppendHistory(line)

		switch line {
		case "EXIT":
			return 0
		case "EXEC":
			executeBuffer(rt, buffer.String())
			buffer.Reset()
		default:
			buffer.WriteString(line)
			buffer.WriteByte('\n')
		}
	}
}

func executeBuffer(rt *runtime.Runtime, source string) {
	_, err := rt.Run(source, "CONSOLE")
	if err == nil {
		return
	}
	if diagErr, ok := err.(*runtime.DiagnosticError); ok {
		fmt.Fprintln(os.Stderr, "Encountered errors while parsing:")
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diagErr.Diagnostics))
		return
	}
	fmt.Fprintln(os.Stderr, "\nEncountered a fatal error during runtime:")
	fmt.Fprintln(os.Stderr, err.Error())
}

func cmdRun(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: toylang run <file>")
		return 1
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening file %q. Maybe file does not exist\n", args[0])
		return 1
	}

	rt := runtime.New()
	_, runErr := rt.Run(string(data), args[0])
	if runErr == nil {
		return 0
	}
	if diagErr, ok := runErr.(*runtime.DiagnosticError); ok {
		fmt.Fprintln(os.Stderr, "Encountered errors while parsing:")
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diagErr.Diagnostics))
		return 0
	}
	fmt.Fprintln(os.Stderr, "\nEncountered a fatal error during runtime:")
	fmt.Fprintln(os.Stderr, runErr.Error())
	return 0
}

func cmdFormat(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: toylang format <file>")
		return 1
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening file %q. Maybe file does not exist\n", args[0])
		return 1
	}

	rt := runtime.New()
	formatted, fmtErr := rt.Format(string(data))
	if fmtErr != nil {
		if diagErr, ok := fmtErr.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(os.Stderr, "Found some errors while parsing:")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diagErr.Diagnostics))
			return 1
		}
		fmt.Fprintln(os.Stderr, fmtErr.Error())
		return 1
	}
	if formatter.HasComments(string(data)) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}
	if err := os.WriteFile(args[0], []byte(formatted), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error while overwriting file %q\n", args[0])
		return 1
	}
	return 0
}
