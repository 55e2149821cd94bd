// Command supportrag is the entry point for the TechNova AB support
// assistant. It ingests the FAQ/policy document into the vector store and
// answers customer questions from the CLI or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/supportrag-go/cmd/supportrag/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
