package cmd

import (
	"fmt"

	"github.com/jchip/safeshell/internal/dialect"
	"github.com/spf13/cobra"
)

var dialectEval string

var dialectCmd = &cobra.Command{
	Use:   "dialect [file]",
	Short: "Detect a script's shell dialect and print its capability table",
	Long: `Detect the shell dialect a script was written for (via shebang or a
"# shell: name" / "# shelltype: name" / "# safesh-shell: name" directive
comment) and print its boolean
capability table (arrays, process substitution, [[ ]], coproc, ...).

If detection fails, bash is reported as the default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDialect,
}

func init() {
	rootCmd.AddCommand(dialectCmd)
	dialectCmd.Flags().StringVarP(&dialectEval, "eval", "e", "", "inspect inline code instead of reading from file")
}

func runDialect(cmd *cobra.Command, args []string) error {
	input, _, err := readInput(dialectEval, args)
	if err != nil {
		return err
	}

	shell, detected := dialect.DetectShell(input, 10)
	if !detected {
		shell = dialect.Bash
	}
	fmt.Printf("dialect: %s (detected=%v)\n", shell, detected)

	caps := dialect.CapabilitiesFor(shell)
	fmt.Printf("  arrays:                %v\n", caps.Arrays)
	fmt.Printf("  associative arrays:    %v\n", caps.AssociativeArrays)
	fmt.Printf("  extended glob:         %v\n", caps.ExtendedGlob)
	fmt.Printf("  process substitution:  %v\n", caps.ProcessSubstitution)
	fmt.Printf("  [[ ]] test command:    %v\n", caps.DoubleBracketTest)
	fmt.Printf("  coproc:                %v\n", caps.Coproc)
	fmt.Printf("  nameref:               %v\n", caps.Nameref)
	fmt.Printf("  $'...' ANSI-C quoting: %v\n", caps.AnsiCQuoting)
	fmt.Printf("  $\"...\" locale quoting: %v\n", caps.LocaleQuoting)
	fmt.Printf("  {fd}>file variables:   %v\n", caps.FdVariables)
	fmt.Printf("  |& stderr pipes:       %v\n", caps.PipeStderr)
	fmt.Printf("  &>> stderr append:     %v\n", caps.AppendStderr)
	return nil
}
