package main

import "github.com/c0depwn/stacklang/cmd"

func main() {
	cmd.Exec()
}
