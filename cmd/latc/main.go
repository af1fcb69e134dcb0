// Command latc drives the compiler: it reads its flags (below) and one
// <path.lat> argument, and compileProgram runs latc.Compile, writes the
// resulting NASM to <basename>.asm, and — unless -asm-only is set —
// shells out to nasm and gcc to finish producing a native binary. No
// L-language front end exists here, so loadProgram always fails and
// the command itself always reports ERROR; compileProgram is reached
// only by callers that already hold a *latc.Program.
//
// Modeled on the teacher's cmd/langlang/main.go flag layout (one args
// struct populated by flag.String/Bool, a readArgs() constructor,
// log.Fatal on a missing required flag) and on the original latc.py
// driver's OK/ERROR-on-stderr, exit-1-on-failure shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/m1kra/latc"
)

type args struct {
	inputPath  *string
	peephole   *bool
	constExpr  *bool
	runtime    *string
	asmOnly    *bool
	outputPath *string
}

func readArgs() *args {
	a := &args{
		peephole:   flag.Bool("peephole", true, "Run the peephole optimizer over generated code"),
		constExpr:  flag.Bool("const-expr", true, "Fold constant expressions and prune dead branches"),
		runtime:    flag.String("runtime", "runtime.o", "Path to the externally supplied runtime object file"),
		asmOnly:    flag.Bool("asm-only", false, "Stop after writing the .asm file; don't invoke nasm/gcc"),
		outputPath: flag.String("o", "", "Path to the final executable (default: <basename>.out)"),
	}
	flag.Parse()
	a.inputPath = new(string)
	if flag.NArg() > 0 {
		*a.inputPath = flag.Arg(0)
	}
	return a
}

func main() {
	a := readArgs()
	if *a.inputPath == "" {
		log.Fatal("usage: latc [flags] <path.lat>")
	}

	cfg := latc.NewCompilerConfig()
	cfg.SetBool("codegen.peephole", *a.peephole)
	cfg.SetBool("codegen.const_expr", *a.constExpr)

	prog, err := loadProgram(*a.inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR")
		fmt.Println(err.Error())
		os.Exit(1)
	}

	basename := strings.TrimSuffix(filepath.Base(*a.inputPath), filepath.Ext(*a.inputPath))
	if err := compileProgram(prog, cfg, basename, *a.runtime, *a.asmOnly, *a.outputPath); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR")
		fmt.Println(errorMessage(err))
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "OK")
}

// loadProgram always fails: this repository has no L-language
// lexer/parser (spec's Non-goals; see SPEC_FULL.md §6) — turning
// source text into a *latc.Program is an external collaborator's job.
// Callers that already have a *latc.Program (every test in this
// repository, and any future front end) should call compileProgram
// directly instead of going through main().
func loadProgram(path string) (*latc.Program, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return nil, errors.Errorf(
		"latc: no L-language front end is implemented in this repository; "+
			"%s was not parsed. Build a *latc.Program via the package API "+
			"and call compileProgram with it instead", path)
}

// errorMessage renders a CompileError the way spec.md §7 requires for
// the CLI's stdout line: "<ErrorClassName> at line <N>: <message>".
// Any other error (a wrapped filesystem/process failure) is printed
// as-is: its message chain only, without the stack trace pkg/errors
// records.
func errorMessage(err error) string {
	return err.Error()
}

// compileProgram runs the full pipeline over prog and, on success,
// writes <basename>.asm and — unless asmOnly — links a native binary
// by shelling out to nasm then gcc. This is the testable surface
// main() wires flags into; it needs no lexer/parser, only an
// already-built *latc.Program.
func compileProgram(prog *latc.Program, cfg *latc.CompilerConfig, basename, runtime string, asmOnly bool, outputPath string) error {
	asm, err := latc.Compile(prog, cfg)
	if err != nil {
		return err
	}

	asmPath := basename + ".asm"
	if err := os.WriteFile(asmPath, []byte(asm), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", asmPath)
	}
	if asmOnly {
		return nil
	}

	objPath := basename + ".o"
	if err := run("nasm", "-f", "elf32", "-o", objPath, asmPath); err != nil {
		return errors.Wrap(err, "running nasm")
	}

	if outputPath == "" {
		outputPath = basename + ".out"
	}
	if err := run("gcc", "-m32", runtime, objPath, "-o", outputPath); err != nil {
		return errors.Wrap(err, "running gcc")
	}
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
