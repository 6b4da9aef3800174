package safeshell

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/jchip/safeshell/pkg/ast"
)

func TestParseReturnsProgramAndPositionMap(t *testing.T) {
	result, err := Parse("echo hello\n", Bash)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if result.Program == nil {
		t.Fatalf("expected a non-nil Program")
	}
	if result.Positions == nil {
		t.Fatalf("expected a non-nil PositionMap")
	}
	if len(result.Program.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(result.Program.Body))
	}
}

func TestParseStrictModeReturnsErrorOnSyntaxProblem(t *testing.T) {
	_, err := Parse("if then fi\n", Bash)
	if err == nil {
		t.Fatalf("expected a syntax error for a malformed if statement")
	}
}

func TestParseWithRecoveryNeverErrors(t *testing.T) {
	result := ParseWithRecovery("if then fi\necho after\n", Bash)
	if result.Program == nil {
		t.Fatalf("expected a non-nil Program even after a recovered error")
	}
	if len(result.Diagnostics) == 0 {
		t.Fatalf("expected at least one recorded diagnostic")
	}
}

func TestParseDialectWarningSurfacesThroughFacade(t *testing.T) {
	result := ParseWithRecovery("[[ -f a ]]\n", Sh)
	found := false
	for _, d := range result.Diagnostics {
		if strings.Contains(d.Message, "[[ ]]") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a [[ ]] compatibility diagnostic under sh, got %+v", result.Diagnostics)
	}
}

func TestParseArithmetic(t *testing.T) {
	expr, err := ParseArithmetic("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseArithmetic returned error: %v", err)
	}
	if _, ok := expr.(*ast.BinaryArithmeticExpression); !ok {
		t.Fatalf("expected *ast.BinaryArithmeticExpression, got %T", expr)
	}
}

func TestDetectShellViaShebang(t *testing.T) {
	shell, ok := DetectShell("#!/bin/zsh\necho hi\n")
	if !ok || shell != Zsh {
		t.Fatalf("expected zsh detection, got %v %v", shell, ok)
	}
}

func TestDetectShellUnrecognizedDefaultsToBash(t *testing.T) {
	shell, ok := DetectShell("echo hi\n")
	if ok {
		t.Fatalf("expected no detection for a script with no shebang/directive")
	}
	if shell != Bash {
		t.Fatalf("expected Bash as the default, got %v", shell)
	}
}

func TestResultCarriesShellAndCapabilities(t *testing.T) {
	result := ParseWithRecovery("echo hi\n", Zsh)
	if result.Shell != Zsh {
		t.Fatalf("expected Result.Shell == Zsh, got %v", result.Shell)
	}
	if !result.Capabilities.ProcessSubstitution {
		t.Fatalf("expected Result.Capabilities to match zsh's table")
	}
	if !result.HasCapability("process_substitution") {
		t.Fatalf("expected Result.HasCapability to report zsh support for process substitution")
	}
	if result.HasCapability("no-such-capability") {
		t.Fatalf("expected an unknown capability name to report false")
	}
}

func TestCapabilitiesForDiffersByDialect(t *testing.T) {
	if !CapabilitiesFor(Bash).ProcessSubstitution {
		t.Fatalf("expected bash to support process substitution")
	}
	if CapabilitiesFor(Sh).ProcessSubstitution {
		t.Fatalf("expected sh to not support process substitution")
	}
}

func TestFormatDiagnostic(t *testing.T) {
	result := ParseWithRecovery("[[ -f a ]]\n", Sh)
	if len(result.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic to format")
	}
	out := FormatDiagnostic(result.Diagnostics[0])
	if out == "" {
		t.Fatalf("expected a non-empty formatted diagnostic")
	}
}

// TestParseSnapshotsDiagnostics snapshots the full formatted diagnostics
// output for a handful of representative scripts, catching accidental
// wording or ordering changes in the diagnostics subsystem.
func TestParseSnapshotsDiagnostics(t *testing.T) {
	scripts := map[string]string{
		"compatibility_warning": "[[ -f a ]]\n",
		"recovered_syntax_error": "if then fi\necho after\n",
		"clean_script": "echo hello world\n",
	}

	for name, src := range scripts {
		result := ParseWithRecovery(src, Sh)
		var b strings.Builder
		for _, d := range result.Diagnostics {
			b.WriteString(FormatDiagnostic(d))
			b.WriteString("\n")
		}
		snaps.MatchSnapshot(t, name, b.String())
	}
}
