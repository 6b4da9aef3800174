package cmd

import (
	"fmt"
	"os"

	"github.com/jchip/safeshell/internal/lexer"
	"github.com/jchip/safeshell/pkg/token"
	"github.com/spf13/cobra"
)

var (
	lexEval       string
	lexShowPos    bool
	lexShowType   bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a shell script and print the resulting tokens",
	Long: `Tokenize a shell script and print the token stream produced by the
lexer, useful for debugging quoting, operator, and here-document handling.

Examples:
  # Tokenize a script file
  safeshell lex script.sh

  # Tokenize an inline snippet
  safeshell lex -e 'echo "$HOME" | grep foo'

  # Show token kinds and positions
  safeshell lex --show-type --show-pos script.sh

  # Show only ILLEGAL tokens
  safeshell lex --only-errors script.sh`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token kind names")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only ILLEGAL tokens")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(lexEval, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	tokenCount, errorCount := 0, 0

	for {
		tok := l.Next()

		if lexOnlyErrors && tok.Kind != token.ILLEGAL {
			if tok.Kind == token.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Kind == token.ILLEGAL {
			errorCount++
		}
		printToken(tok)

		if tok.Kind == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if lexOnlyErrors && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok token.Token) {
	var output string
	if lexShowType {
		output = fmt.Sprintf("[%-14s]", tok.Kind)
	}

	switch {
	case tok.Kind == token.EOF:
		output += " EOF"
	case tok.Kind == token.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Lexeme)
	case tok.Lexeme == "":
		output += fmt.Sprintf(" %s", tok.Kind)
	default:
		output += fmt.Sprintf(" %q", tok.Lexeme)
	}

	if lexShowPos {
		output += fmt.Sprintf(" @%s", tok.Span.Start)
	}
	fmt.Println(output)
}

// readInput resolves the "-e inline text" / "file argument" precedence
// shared by the lex and dialect subcommands; with neither it returns an
// error (stdin is not read).
func readInput(eval string, args []string) (input, name string, err error) {
	switch {
	case eval != "":
		return eval, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
	}
}
