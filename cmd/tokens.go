package cmd

import (
	"fmt"
	"github.com/c0depwn/stacklang/syntax"
	"github.com/spf13/cobra"
)

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [source_file]",
		Short: "Show the output of the lexical analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokens,
	}
}

func runTokens(_ *cobra.Command, args []string) error {
	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tokens, err := syntax.Tokens(args[0], f)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		fmt.Println(t)
	}
	return nil
}
