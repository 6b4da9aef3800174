package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jchip/safeshell/internal/dialect"
	"github.com/jchip/safeshell/pkg/ast"
	"github.com/jchip/safeshell/pkg/safeshell"
	"github.com/spf13/cobra"
)

var (
	parseExpr     bool
	parseDumpAST  bool
	parseRecovery bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a shell script and display its AST and diagnostics",
	Long: `Parse shell source into SafeShell's AST and report any diagnostics.

If no file is provided, reads from stdin. Use -e to parse a single
snippet from the command line. Use --dump-ast to print the full tree
instead of a one-line-per-statement summary. Use --recover to keep
going past the first syntax error, collecting every recoverable
diagnostic instead of stopping at the first one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpr, "expression", "e", false, "parse a snippet from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
	parseCmd.Flags().BoolVar(&parseRecovery, "recover", false, "keep parsing past syntax errors")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string
	switch {
	case parseExpr:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	shell, err := resolveDialect(cmd, input)
	if err != nil {
		return err
	}

	var result safeshell.Result
	if parseRecovery {
		result = safeshell.ParseWithRecovery(input, shell)
	} else {
		result, err = safeshell.Parse(input, shell)
		if err != nil {
			return err
		}
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, safeshell.FormatDiagnostic(d))
	}

	if parseDumpAST {
		fmt.Println("Program:")
		dumpStatements(result.Program.Body, 1)
	} else {
		fmt.Printf("Program: %d top-level statement(s)\n", len(result.Program.Body))
	}

	if len(result.Diagnostics) > 0 {
		return fmt.Errorf("parsing produced %d diagnostic(s)", len(result.Diagnostics))
	}
	return nil
}

// resolveDialect honors an explicit --dialect flag, then falls back to
// shebang/directive sniffing, then defaults to bash.
func resolveDialect(cmd *cobra.Command, input string) (dialect.Shell, error) {
	name, _ := cmd.Flags().GetString("dialect")
	if cmd.Flags().Changed("dialect") {
		shell, ok := dialect.ParseShell(name)
		if !ok {
			return dialect.Bash, fmt.Errorf("unknown shell dialect %q", name)
		}
		return shell, nil
	}
	if shell, ok := safeshell.DetectShell(input); ok {
		return shell, nil
	}
	return dialect.Bash, nil
}

func indent(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "  "
	}
	return s
}

func dumpStatements(stmts []ast.Statement, depth int) {
	for _, s := range stmts {
		dumpStatement(s, depth)
	}
}

// dumpStatement prints one AST node per line, recursing into every
// compound construct's body. It is a debugging aid, not a formatter: spec
// places source regeneration out of scope, so this never round-trips.
func dumpStatement(s ast.Statement, depth int) {
	pre := indent(depth)
	switch n := s.(type) {
	case *ast.Pipeline:
		fmt.Printf("%sPipeline op=%v negate=%v background=%v (%d commands)\n", pre, n.Operator, n.Negate, n.Background, len(n.Commands))
		dumpStatements(n.Commands, depth+1)
	case *ast.Command:
		name := "<none>"
		if n.Name != nil {
			name = n.Name.Value
		}
		fmt.Printf("%sCommand name=%q args=%d assignments=%d redirects=%d\n", pre, name, len(n.Args), len(n.Assignments), len(n.Redirects))
	case *ast.VariableAssignment:
		fmt.Printf("%sVariableAssignment name=%q\n", pre, n.Assignment.Name)
	case *ast.IfStatement:
		fmt.Printf("%sIf\n", pre)
		dumpStatements(n.Consequent, depth+1)
		switch alt := n.Alternate.(type) {
		case *ast.IfStatement:
			dumpStatement(alt, depth)
		case []ast.Statement:
			fmt.Printf("%sElse\n", pre)
			dumpStatements(alt, depth+1)
		}
	case *ast.ForStatement:
		fmt.Printf("%sFor var=%s hasIn=%v\n", pre, n.Variable, n.HasIn)
		dumpStatements(n.Body, depth+1)
	case *ast.CStyleForStatement:
		fmt.Printf("%sCStyleFor\n", pre)
		dumpStatements(n.Body, depth+1)
	case *ast.WhileStatement:
		fmt.Printf("%sWhile\n", pre)
		dumpStatements(n.Body, depth+1)
	case *ast.UntilStatement:
		fmt.Printf("%sUntil\n", pre)
		dumpStatements(n.Body, depth+1)
	case *ast.CaseStatement:
		fmt.Printf("%sCase arms=%d\n", pre, len(n.Arms))
		for _, arm := range n.Arms {
			fmt.Printf("%s  arm patterns=%d terminator=%v\n", pre, len(arm.Patterns), arm.Terminator)
			dumpStatements(arm.Body, depth+2)
		}
	case *ast.FunctionDeclaration:
		fmt.Printf("%sFunction %s\n", pre, n.Name)
		dumpStatement(n.Body, depth+1)
	case *ast.Subshell:
		fmt.Printf("%sSubshell\n", pre)
		dumpStatements(n.Body, depth+1)
	case *ast.BraceGroup:
		fmt.Printf("%sBraceGroup\n", pre)
		dumpStatements(n.Body, depth+1)
	case *ast.TestCommand:
		fmt.Printf("%sTest\n", pre)
	case *ast.ArithmeticCommand:
		fmt.Printf("%sArithmeticCommand\n", pre)
	case *ast.ReturnStatement:
		fmt.Printf("%sReturn\n", pre)
	case *ast.BreakStatement:
		fmt.Printf("%sBreak\n", pre)
	case *ast.ContinueStatement:
		fmt.Printf("%sContinue\n", pre)
	default:
		fmt.Printf("%s%T\n", pre, s)
	}
}
