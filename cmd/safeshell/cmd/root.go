package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "safeshell",
	Short: "SafeShell lexer and parser front-end",
	Long: `safeshell tokenizes and parses POSIX/bash-family shell scripts into a
typed AST, without executing or transpiling them.

It understands the lexical quirks of bash, sh, dash, ksh and zsh well
enough to report dialect-compatibility diagnostics alongside ordinary
syntax errors. Downstream code generation and evaluation are out of
scope for this tool; it only covers the lex/parse/diagnose front end.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("dialect", "d", "bash", "shell dialect (bash, sh, dash, ksh, zsh)")
}
