package cmd

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/spf13/cobra"
	"strings"
)

func newSymbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [source_file]",
		Short: "Show the output of the symbol analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runSymbols,
	}
}

func runSymbols(_ *cobra.Command, args []string) error {
	file, err := parseFile(args[0])
	if err != nil {
		return err
	}

	info, err := symbols.Analyze(file)
	if err != nil {
		return err
	}

	fmt.Printf("+ %[1]s + %[1]s + %[1]s +\n", strings.Repeat("-", 16))
	fmt.Printf("| %16s | %16s | %16s |\n", "declaration name", "context", "id")
	fmt.Printf("+ %[1]s + %[1]s + %[1]s +\n", strings.Repeat("-", 16))
	printContext(info, info.Root, 0)
	fmt.Printf("+ %[1]s + %[1]s + %[1]s +\n", strings.Repeat("-", 16))

	return nil
}

func printContext(info symbols.Info, ctx *symbols.Context, depth int) {
	name := "program"
	switch n := ctx.Node().(type) {
	case *ast.FuncDeclaration:
		name = "fn " + n.Name()
	case *ast.Block:
		name = "block"
	}
	fmt.Printf("| %-16s | %16d | %16s |\n", strings.Repeat(" ", depth)+name, ctx.ID(), "")

	for _, decl := range ctx.Declarations() {
		fmt.Printf("| %-16s | %16d | %16d |\n", strings.Repeat(" ", depth+1)+decl.Name(), ctx.ID(), info.ID(decl))
	}
	for _, child := range ctx.Children() {
		printContext(info, child, depth+1)
	}
}
