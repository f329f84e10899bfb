package cmd

import (
	"bytes"
	"github.com/c0depwn/stacklang/codegen/amd64"
	"github.com/spf13/cobra"
	"io"
	"log"
	"os"
)

var (
	compileFlagOutput  string
	compileFlagRuntime string
	compileFlagTrace   bool
)

func newCompileCommand() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile [source_file]",
		Short: "Compile a stacklang source file to x86-64 NASM assembly",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompiler,
	}
	compileCmd.PersistentFlags().StringVarP(&compileFlagOutput, "output", "o", "", "output file, stdout if empty")
	compileCmd.PersistentFlags().StringVar(&compileFlagRuntime, "runtime", amd64.DefaultRuntimeInclude, "runtime file to include, empty to omit")
	compileCmd.PersistentFlags().BoolVar(&compileFlagTrace, "trace", false, "trace the lowering to stderr")
	return compileCmd
}

type compileOptions struct {
	runtime string
	trace   io.Writer
}

// compile translates the file at path and returns the assembly.
func compile(path string, opts compileOptions) (string, error) {
	file, info, err := checkFile(path, checkOptions{})
	if err != nil {
		return "", err
	}

	genOpts := []amd64.GeneratorOption{
		amd64.WithInfo(info),
		amd64.WithRuntimeInclude(opts.runtime),
	}
	if opts.trace != nil {
		genOpts = append(genOpts, amd64.WithTrace(opts.trace))
	}

	log.Println("Generating code...")
	buf := &bytes.Buffer{}
	if err := amd64.Generate(file, buf, genOpts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func runCompiler(_ *cobra.Command, args []string) error {
	opts := compileOptions{runtime: compileFlagRuntime}
	if compileFlagTrace {
		opts.trace = os.Stderr
	}

	asm, err := compile(args[0], opts)
	if err != nil {
		return err
	}

	if compileFlagOutput == "" {
		_, err = io.WriteString(os.Stdout, asm)
		return err
	}
	if err := os.WriteFile(compileFlagOutput, []byte(asm), 0644); err != nil {
		return err
	}
	log.Printf("Compilation completed, %d bytes written to %s\n", len(asm), compileFlagOutput)
	return nil
}
