// Package main is the entry point for the codeparity application, a
// structural source code equivalence checker built on tree-sitter grammars.
package main

import "codeparity/cmd"

func main() {
	cmd.Execute()
}
