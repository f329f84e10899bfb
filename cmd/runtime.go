package cmd

import (
	"github.com/c0depwn/stacklang/codegen/amd64"
	"github.com/spf13/cobra"
	"io"
	"log"
	"os"
)

var runtimeFlagOutput string

func newRuntimeCommand() *cobra.Command {
	runtimeCmd := &cobra.Command{
		Use:   "runtime",
		Short: "Write the NASM runtime included by compiled programs",
		Args:  cobra.NoArgs,
		RunE:  runRuntime,
	}
	runtimeCmd.PersistentFlags().StringVarP(&runtimeFlagOutput, "output", "o", "", "output file, stdout if empty")
	return runtimeCmd
}

func runRuntime(_ *cobra.Command, _ []string) error {
	if runtimeFlagOutput == "" {
		_, err := io.WriteString(os.Stdout, amd64.Runtime)
		return err
	}
	if err := os.WriteFile(runtimeFlagOutput, []byte(amd64.Runtime), 0644); err != nil {
		return err
	}
	log.Printf("Runtime written to %s\n", runtimeFlagOutput)
	return nil
}
