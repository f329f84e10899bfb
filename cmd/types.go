package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

var (
	typesFlagTrace bool
)

func newTypesCommand() *cobra.Command {
	typesCmd := &cobra.Command{
		Use:   "types [source_file]",
		Short: "Output of type analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runTypes,
	}

	typesCmd.PersistentFlags().BoolVar(&typesFlagTrace, "trace", false, "enable trace information output")

	return typesCmd
}

func runTypes(_ *cobra.Command, args []string) error {
	opts := checkOptions{}
	if typesFlagTrace {
		opts.typesTrace = os.Stdout
	}

	_, info, err := checkFile(args[0], opts)
	if err != nil {
		return err
	}

	fmt.Printf("+ %[1]s + %[1]s +\n", strings.Repeat("-", 16))
	fmt.Printf("| %16s | %16s | \n", "name", "type")
	fmt.Printf("+ %[1]s + %[1]s +\n", strings.Repeat("-", 16))

	for _, decl := range info.Root.AllDeclarations() {
		fmt.Printf("| %16s | %16s |\n", decl.Name(), decl.Type())
	}

	fmt.Printf("+ %[1]s + %[1]s +\n", strings.Repeat("-", 16))

	return nil
}
