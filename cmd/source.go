package cmd

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/semantics"
	"github.com/c0depwn/stacklang/simplify"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/syntax"
	"github.com/c0depwn/stacklang/types"
	"io"
	"log"
)

// parseFile reads and parses the source file at path.
func parseFile(path string) (*ast.File, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log.Println("Parsing into AST...")
	return syntax.Parse(path, f)
}

type checkOptions struct {
	typesTrace io.Writer
}

// checkFile runs all front end passes on the file at path.
func checkFile(path string, opts checkOptions) (*ast.File, symbols.Info, error) {
	file, err := parseFile(path)
	if err != nil {
		return nil, symbols.Info{}, err
	}

	log.Println("Simplifying...")
	if _, err := simplify.File(file); err != nil {
		return nil, symbols.Info{}, err
	}

	log.Println("Resolving symbols...")
	info, err := symbols.Analyze(file)
	if err != nil {
		return nil, symbols.Info{}, err
	}

	log.Println("Type checking...")
	var typeOpts []types.AnalyzeOption
	if opts.typesTrace != nil {
		typeOpts = append(typeOpts, types.WithTraversalTrace(opts.typesTrace))
	}
	if err := types.Analyze(file, info, typeOpts...); err != nil {
		return nil, symbols.Info{}, err
	}

	log.Println("Checking semantics...")
	if err := semantics.Analyze(file, info); err != nil {
		return nil, symbols.Info{}, err
	}
	return file, info, nil
}
