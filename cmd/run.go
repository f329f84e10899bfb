package cmd

import (
	"github.com/c0depwn/stacklang/emulator"
	"github.com/spf13/cobra"
	"log"
	"os"
)

var (
	runFlagMaxSteps int
	runFlagTrace    bool
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [source_file]",
		Short: "Compile a stacklang source file and execute it in the emulator",
		Args:  cobra.ExactArgs(1),
		RunE:  runProgram,
	}
	runCmd.PersistentFlags().IntVar(&runFlagMaxSteps, "max-steps", emulator.DefaultMaxSteps, "maximum number of executed instructions, 0 for no limit")
	runCmd.PersistentFlags().BoolVar(&runFlagTrace, "trace", false, "trace executed instructions to stderr")
	return runCmd
}

func runProgram(_ *cobra.Command, args []string) error {
	asm, err := compile(args[0], compileOptions{})
	if err != nil {
		return err
	}

	opts := []emulator.Option{emulator.WithMaxSteps(runFlagMaxSteps)}
	if runFlagTrace {
		opts = append(opts, emulator.WithTrace(os.Stderr, au))
	}

	log.Println("Executing...")
	status, err := emulator.Run(asm, os.Stdout, opts...)
	if err != nil {
		return err
	}
	log.Printf("Program exited with status %d\n", status)
	if status != 0 {
		os.Exit(status)
	}
	return nil
}
