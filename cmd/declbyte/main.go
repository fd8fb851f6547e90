package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/declbyte/declbyte/compiler"
	cerrors "github.com/declbyte/declbyte/errors"
)

// Exit codes distinguish the error classes a build script cares about.
const (
	exitOK          = 0
	exitIO          = 1
	exitParse       = 2
	exitMacro       = 3
	exitUnsupported = 4
	exitLayout      = 5
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to the C header to compile")
		outFile     = flag.String("out", "", "Output file (default stdout)")
		wordSize    = flag.Int("word-size", 8, "Target pointer width in bytes (4 or 8)")
		packed      = flag.Bool("packed", false, "Default to packed layout for unmarked structs")
		pkgName     = flag.String("pkg", "layout", "Package name of the generated Go file")
		verbose     = flag.Bool("v", false, "Verbose compilation logging")
		interactive = flag.Bool("i", false, "Interactive layout inspector")
	)
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: declbyte -in <file.h> [-out file.go] [-word-size 4|8] [-packed] [-pkg name]")
		fmt.Fprintln(os.Stderr, "       declbyte -in <file.h> -i  (interactive inspector)")
		os.Exit(exitIO)
	}
	if *wordSize != 4 && *wordSize != 8 {
		fmt.Fprintf(os.Stderr, "Error: -word-size must be 4 or 8, got %d\n", *wordSize)
		os.Exit(exitIO)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			compiler.SetLogger(logger)
			defer logger.Sync()
		}
	}

	opts := compiler.Options{
		TargetWordSize: *wordSize,
		PackageName:    *pkgName,
	}
	if *packed {
		opts.DefaultPacking = compiler.Packed
	}

	if *interactive {
		if err := runInteractive(*inFile, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitCode(err))
		}
		return
	}

	if err := run(*inFile, *outFile, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(inFile, outFile string, opts compiler.Options) error {
	source, err := os.ReadFile(inFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	out, err := compiler.Compile(string(source), opts)
	if err != nil {
		return err
	}

	// The output file is only touched after a successful compilation.
	if outFile == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(outFile, []byte(out), 0o644)
}

func exitCode(err error) int {
	var cerr *cerrors.Error
	if !errors.As(err, &cerr) {
		return exitIO
	}
	switch cerr.Kind {
	case cerrors.KindBadToken, cerrors.KindDuplicateSymbol:
		return exitParse
	case cerrors.KindUndefinedSymbol, cerrors.KindCyclicDefinition, cerrors.KindDivideByZero:
		return exitMacro
	case cerrors.KindUnsupported:
		return exitUnsupported
	case cerrors.KindLayoutConflict:
		return exitLayout
	}
	return exitIO
}
