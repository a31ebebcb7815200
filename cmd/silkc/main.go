// Command silkc is the thin driver wiring C1-C6 over a JSON-encoded parse
// tree (spec §6: "a driver wires the passes together; this spec describes
// none of that wiring"). It reads a Program from a file or stdin, runs it
// through symtab, check, mir, ssa, and emit in order, and writes the
// resulting text IR to a file or stdout. It is the only package in this
// module that does I/O or calls log.Fatal — every pass beneath it returns
// a plain (T, error) per spec §7.
//
// Grounded on go/ssa's own cmd/* wrappers (e.g. cmd/gorename, cmd/stress):
// a flag.String/flag.Bool var block, a single linear main, log.Fatal on
// the first error, no structured logging.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/programming-zone/silk/check"
	"github.com/programming-zone/silk/emit"
	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ssa"
	"github.com/programming-zone/silk/symtab"
)

var (
	inFlag        = flag.String("in", "", "path to the JSON-encoded parse tree (default: stdin)")
	outFlag       = flag.String("out", "", "path to write the emitted text IR (default: stdout)")
	strictReturns = flag.Bool("strict-returns", false, "enforce that every `return e` matches its function's declared return type (Open Question 1)")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("silkc: ")
	flag.Parse()

	in, err := openInput(*inFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	raw, err := io.ReadAll(in)
	if err != nil {
		log.Fatalf("reading parse tree: %v", err)
	}

	out, err := Compile(raw, check.Checker{StrictReturns: *strictReturns})
	if err != nil {
		log.Fatal(err)
	}

	if err := writeOutput(*outFlag, out); err != nil {
		log.Fatal(err)
	}
}

// Compile runs the full C1-C6 pipeline over a JSON-encoded parse tree,
// stopping at the first stage that returns an error (spec §7's
// first-error-abort discipline). It has no dependency on flag/os; main is
// its only caller.
func Compile(jsonProgram []byte, checker check.Checker) (string, error) {
	prog, err := decodeProgram(jsonProgram)
	if err != nil {
		return "", fmt.Errorf("decoding parse tree: %w", err)
	}

	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		return "", err
	}

	if err := check.Check(prog, tree, checker); err != nil {
		return "", err
	}

	mirRoots, err := mir.ConstructIRTree(prog, tree)
	if err != nil {
		return "", err
	}

	ssaRoots, err := ssa.Build(mirRoots)
	if err != nil {
		return "", err
	}

	return emit.Module(ssaRoots)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
