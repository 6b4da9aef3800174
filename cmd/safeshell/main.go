// Command safeshell is a CLI front end for the SafeShell lexer, grammar
// parser and dialect model: lex, parse and dialect-detect shell scripts
// without executing them.
package main

import (
	"fmt"
	"os"

	"github.com/jchip/safeshell/cmd/safeshell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
