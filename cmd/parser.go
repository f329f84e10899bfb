package cmd

import (
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"os"
)

var parseFlagDump bool

func newParseCommand() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse [source_file]",
		Short: "Invoke the parser and print the program",
		Args:  cobra.ExactArgs(1),
		RunE:  runParser,
	}

	parseCmd.PersistentFlags().BoolVar(&parseFlagDump, "dump", false, "dump the complete syntax tree")

	return parseCmd
}

// dumper prints syntax trees without pointer addresses.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

func runParser(_ *cobra.Command, args []string) error {
	file, err := parseFile(args[0])
	if err != nil {
		return err
	}

	if parseFlagDump {
		dumper.Fdump(os.Stdout, file)
		return nil
	}

	for _, stmt := range file.Statements {
		fmt.Println(stmt)
	}
	return nil
}
