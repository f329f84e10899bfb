package cmd

import (
	"fmt"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"io"
	"log"
	"os"
)

var (
	rootFlagVerbose bool
	rootFlagNoColor bool
)

// au colours all terminal output, see --no-color.
var au = aurora.NewAurora(true)

var rootCmd = &cobra.Command{
	Use:   "stacklang",
	Short: "Compiler for the stacklang programming language",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		au = aurora.NewAurora(!rootFlagNoColor)
		log.SetFlags(0)
		log.SetPrefix(au.Blue("stacklang: ").String())
		if !rootFlagVerbose {
			log.SetOutput(io.Discard)
		}
	},
}

func Exec() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlagVerbose, "verbose", "v", false, "print progress information")
	rootCmd.PersistentFlags().BoolVar(&rootFlagNoColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(newTokensCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newSymbolsCommand())
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newRuntimeCommand())

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, au.Red(err.Error()))
		os.Exit(1)
	}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, fmt.Errorf("'%s' is a directory, please provide a file", path)
	}
	return f, nil
}
