package parser

import (
	"testing"

	"github.com/jchip/safeshell/internal/dialect"
	"github.com/jchip/safeshell/pkg/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, _, err := Parse(src, dialect.Bash)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return prog
}

func singleCommand(t *testing.T, stmt ast.Statement) *ast.Command {
	t.Helper()
	pipeline, ok := stmt.(*ast.Pipeline)
	if !ok {
		t.Fatalf("expected *ast.Pipeline, got %T", stmt)
	}
	if len(pipeline.Commands) != 1 {
		t.Fatalf("expected a single-command pipeline, got %d commands", len(pipeline.Commands))
	}
	cmd, ok := pipeline.Commands[0].(*ast.Command)
	if !ok {
		t.Fatalf("expected *ast.Command, got %T", pipeline.Commands[0])
	}
	return cmd
}

// unwrap returns the one statement inside the single-command Pipeline that
// the parser wraps around every statement, compound constructs included.
func unwrap(t *testing.T, stmt ast.Statement) ast.Statement {
	t.Helper()
	pipeline, ok := stmt.(*ast.Pipeline)
	if !ok {
		t.Fatalf("expected *ast.Pipeline, got %T", stmt)
	}
	if len(pipeline.Commands) != 1 {
		t.Fatalf("expected a single-command pipeline, got %d commands", len(pipeline.Commands))
	}
	return pipeline.Commands[0]
}

func TestParseSimpleCommand(t *testing.T) {
	prog := mustParse(t, "echo hello world\n")
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	cmd := singleCommand(t, prog.Body[0])
	if cmd.Name.Value != "echo" {
		t.Fatalf("expected command name %q, got %q", "echo", cmd.Name.Value)
	}
	if len(cmd.Args) != 2 || cmd.Args[0].Value != "hello" || cmd.Args[1].Value != "world" {
		t.Fatalf("unexpected args: %+v", cmd.Args)
	}
}

func TestParseLeadingAssignment(t *testing.T) {
	prog := mustParse(t, "FOO=bar echo $FOO\n")
	cmd := singleCommand(t, prog.Body[0])
	if len(cmd.Assignments) != 1 || cmd.Assignments[0].Name != "FOO" {
		t.Fatalf("expected one leading assignment FOO, got %+v", cmd.Assignments)
	}
	if cmd.Name.Value != "echo" {
		t.Fatalf("expected command name echo, got %q", cmd.Name.Value)
	}
}

func TestParseBareAssignmentIsVariableAssignment(t *testing.T) {
	prog := mustParse(t, "FOO=bar\n")
	stmt := unwrap(t, prog.Body[0])
	va, ok := stmt.(*ast.VariableAssignment)
	if !ok {
		t.Fatalf("expected *ast.VariableAssignment, got %T", stmt)
	}
	if va.Assignment.Name != "FOO" {
		t.Fatalf("expected name FOO, got %q", va.Assignment.Name)
	}
}

func TestParsePipeline(t *testing.T) {
	prog := mustParse(t, "ls | grep foo | wc -l\n")
	pipeline, ok := prog.Body[0].(*ast.Pipeline)
	if !ok {
		t.Fatalf("expected *ast.Pipeline, got %T", prog.Body[0])
	}
	if pipeline.Operator != ast.OpPipe {
		t.Fatalf("expected OpPipe, got %v", pipeline.Operator)
	}
	if len(pipeline.Commands) != 3 {
		t.Fatalf("expected 3 piped commands, got %d", len(pipeline.Commands))
	}
}

func TestParsePipeErrOperator(t *testing.T) {
	prog := mustParse(t, "make |& tee build.log\n")
	pipeline := prog.Body[0].(*ast.Pipeline)
	if !pipeline.PipeErr {
		t.Fatalf("expected PipeErr == true for |&")
	}
}

func TestParseAndOrList(t *testing.T) {
	prog := mustParse(t, "make build && make test || echo failed\n")
	pipeline, ok := prog.Body[0].(*ast.Pipeline)
	if !ok {
		t.Fatalf("expected *ast.Pipeline at the top, got %T", prog.Body[0])
	}
	if pipeline.Operator != ast.OpOrOr {
		t.Fatalf("expected the outermost operator to be || (lowest precedence last), got %v", pipeline.Operator)
	}
	if len(pipeline.Commands) != 2 {
		t.Fatalf("expected 2 operands at the || level, got %d", len(pipeline.Commands))
	}
	nested, ok := pipeline.Commands[0].(*ast.Pipeline)
	if !ok || nested.Operator != ast.OpAndAnd {
		t.Fatalf("expected the left operand to be the nested && pipeline, got %T", pipeline.Commands[0])
	}
}

func TestParseNegatedPipeline(t *testing.T) {
	prog := mustParse(t, "! grep foo file.txt\n")
	pipeline := prog.Body[0].(*ast.Pipeline)
	if !pipeline.Negate {
		t.Fatalf("expected Negate == true")
	}
}

func TestParseBackgroundCommand(t *testing.T) {
	prog := mustParse(t, "sleep 10 &\n")
	pipeline := prog.Body[0].(*ast.Pipeline)
	if !pipeline.Background {
		t.Fatalf("expected Background == true")
	}
}

func TestParseIfStatement(t *testing.T) {
	prog := mustParse(t, "if true; then echo yes; fi\n")
	stmt := unwrap(t, prog.Body[0])
	ifs, ok := stmt.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", stmt)
	}
	if len(ifs.Consequent) != 1 {
		t.Fatalf("expected one consequent statement, got %d", len(ifs.Consequent))
	}
	if ifs.Alternate != nil {
		t.Fatalf("expected nil Alternate, got %#v", ifs.Alternate)
	}
}

func TestParseIfElifElse(t *testing.T) {
	prog := mustParse(t, "if a; then b; elif c; then d; else e; fi\n")
	ifs := unwrap(t, prog.Body[0]).(*ast.IfStatement)
	elifChain, ok := ifs.Alternate.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected Alternate to be a nested *ast.IfStatement for elif, got %#v", ifs.Alternate)
	}
	elseBody, ok := elifChain.Alternate.([]ast.Statement)
	if !ok || len(elseBody) != 1 {
		t.Fatalf("expected elif's Alternate to be a one-statement else body, got %#v", elifChain.Alternate)
	}
}

func TestParseWhileStatement(t *testing.T) {
	prog := mustParse(t, "while true; do echo hi; done\n")
	stmt := unwrap(t, prog.Body[0])
	ws, ok := stmt.(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected *ast.WhileStatement, got %T", stmt)
	}
	if len(ws.Body) != 1 {
		t.Fatalf("expected one body statement, got %d", len(ws.Body))
	}
}

func TestParseUntilStatement(t *testing.T) {
	prog := mustParse(t, "until false; do echo hi; done\n")
	stmt := unwrap(t, prog.Body[0])
	if _, ok := stmt.(*ast.UntilStatement); !ok {
		t.Fatalf("expected *ast.UntilStatement, got %T", stmt)
	}
}

func TestParseForStatementWithIn(t *testing.T) {
	prog := mustParse(t, "for f in a b c; do echo $f; done\n")
	stmt := unwrap(t, prog.Body[0])
	fs, ok := stmt.(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected *ast.ForStatement, got %T", stmt)
	}
	if fs.Variable != "f" || !fs.HasIn {
		t.Fatalf("expected variable f with HasIn, got %+v", fs)
	}
	if len(fs.Iterable) != 3 {
		t.Fatalf("expected 3 iterable words, got %d", len(fs.Iterable))
	}
}

func TestParseForStatementWithoutIn(t *testing.T) {
	prog := mustParse(t, "for f; do echo $f; done\n")
	fs := unwrap(t, prog.Body[0]).(*ast.ForStatement)
	if fs.HasIn {
		t.Fatalf("expected HasIn == false for a bare 'for f;'")
	}
}

func TestParseCStyleFor(t *testing.T) {
	prog := mustParse(t, "for ((i=0; i<10; i++)); do echo $i; done\n")
	stmt := unwrap(t, prog.Body[0])
	cf, ok := stmt.(*ast.CStyleForStatement)
	if !ok {
		t.Fatalf("expected *ast.CStyleForStatement, got %T", stmt)
	}
	if cf.Init == nil || cf.Test == nil || cf.Update == nil {
		t.Fatalf("expected all three clauses populated, got %+v", cf)
	}
}

func TestParseCStyleForWithEmptyClauses(t *testing.T) {
	prog := mustParse(t, "for ((;;)); do break; done\n")
	cf := unwrap(t, prog.Body[0]).(*ast.CStyleForStatement)
	if cf.Init != nil || cf.Test != nil || cf.Update != nil {
		t.Fatalf("expected all clauses nil for 'for ((;;))', got %+v", cf)
	}
}

func TestParseCaseStatement(t *testing.T) {
	prog := mustParse(t, "case $x in a) echo a ;; b|c) echo bc ;; *) echo other ;; esac\n")
	stmt := unwrap(t, prog.Body[0])
	cs, ok := stmt.(*ast.CaseStatement)
	if !ok {
		t.Fatalf("expected *ast.CaseStatement, got %T", stmt)
	}
	if len(cs.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(cs.Arms))
	}
	if len(cs.Arms[1].Patterns) != 2 {
		t.Fatalf("expected 2 patterns on the b|c arm, got %d", len(cs.Arms[1].Patterns))
	}
	if cs.Arms[0].Terminator != ast.TermBreak {
		t.Fatalf("expected TermBreak, got %v", cs.Arms[0].Terminator)
	}
}

func TestParseFunctionDeclarationBothForms(t *testing.T) {
	prog := mustParse(t, "function foo { echo hi; }\nbar() { echo hi; }\n")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Body))
	}
	stmt1 := unwrap(t, prog.Body[0])
	fn1, ok := stmt1.(*ast.FunctionDeclaration)
	if !ok || fn1.Name != "foo" {
		t.Fatalf("expected function foo, got %#v", stmt1)
	}
	stmt2 := unwrap(t, prog.Body[1])
	fn2, ok := stmt2.(*ast.FunctionDeclaration)
	if !ok || fn2.Name != "bar" {
		t.Fatalf("expected function bar, got %#v", stmt2)
	}
	if _, ok := fn1.Body.(*ast.BraceGroup); !ok {
		t.Fatalf("expected *ast.BraceGroup body, got %T", fn1.Body)
	}
}

func TestParseSubshell(t *testing.T) {
	prog := mustParse(t, "(cd /tmp && ls)\n")
	stmt := unwrap(t, prog.Body[0])
	sub, ok := stmt.(*ast.Subshell)
	if !ok {
		t.Fatalf("expected *ast.Subshell, got %T", stmt)
	}
	if len(sub.Body) != 1 {
		t.Fatalf("expected one statement inside the subshell, got %d", len(sub.Body))
	}
}

func TestParseBraceGroup(t *testing.T) {
	prog := mustParse(t, "{ echo a; echo b; }\n")
	stmt := unwrap(t, prog.Body[0])
	bg, ok := stmt.(*ast.BraceGroup)
	if !ok {
		t.Fatalf("expected *ast.BraceGroup, got %T", stmt)
	}
	if len(bg.Body) != 2 {
		t.Fatalf("expected 2 statements in the brace group, got %d", len(bg.Body))
	}
}

func TestParseArithmeticCommand(t *testing.T) {
	prog := mustParse(t, "(( x = 1 + 2 ))\n")
	stmt := unwrap(t, prog.Body[0])
	ac, ok := stmt.(*ast.ArithmeticCommand)
	if !ok {
		t.Fatalf("expected *ast.ArithmeticCommand, got %T", stmt)
	}
	if _, ok := ac.Expression.(*ast.AssignmentExpression); !ok {
		t.Fatalf("expected an assignment expression, got %T", ac.Expression)
	}
}

func TestParseTestCommandUnary(t *testing.T) {
	prog := mustParse(t, "[[ -f /etc/passwd ]]\n")
	stmt := unwrap(t, prog.Body[0])
	tc, ok := stmt.(*ast.TestCommand)
	if !ok {
		t.Fatalf("expected *ast.TestCommand, got %T", stmt)
	}
	ut, ok := tc.Condition.(*ast.UnaryTest)
	if !ok || ut.Operator != "-f" {
		t.Fatalf("expected unary test -f, got %#v", tc.Condition)
	}
}

func TestParseTestCommandStringComparison(t *testing.T) {
	prog := mustParse(t, `[[ "$a" == "$b" ]]` + "\n")
	tc := unwrap(t, prog.Body[0]).(*ast.TestCommand)
	bt, ok := tc.Condition.(*ast.BinaryTest)
	if !ok || bt.Operator != "==" {
		t.Fatalf("expected binary test ==, got %#v", tc.Condition)
	}
}

func TestParseTestCommandLessThan(t *testing.T) {
	prog := mustParse(t, "[[ a < b ]]\n")
	tc := unwrap(t, prog.Body[0]).(*ast.TestCommand)
	bt, ok := tc.Condition.(*ast.BinaryTest)
	if !ok || bt.Operator != "<" {
		t.Fatalf("expected binary string-less-than test, got %#v", tc.Condition)
	}
}

func TestParseTestCommandLogicalAnd(t *testing.T) {
	prog := mustParse(t, "[[ -f a && -f b ]]\n")
	tc := unwrap(t, prog.Body[0]).(*ast.TestCommand)
	lt, ok := tc.Condition.(*ast.LogicalTest)
	if !ok || lt.Operator != "&&" {
		t.Fatalf("expected logical && test, got %#v", tc.Condition)
	}
}

func TestParseTestCommandNegation(t *testing.T) {
	prog := mustParse(t, "[[ ! -f a ]]\n")
	tc := unwrap(t, prog.Body[0]).(*ast.TestCommand)
	lt, ok := tc.Condition.(*ast.LogicalTest)
	if !ok || lt.Operator != "!" {
		t.Fatalf("expected logical ! test, got %#v", tc.Condition)
	}
	if lt.Left != nil {
		t.Fatalf("expected nil Left for a unary negation, got %#v", lt.Left)
	}
}

func TestParseReturnBreakContinue(t *testing.T) {
	prog := mustParse(t, "f() { return 1; }\nfor x; do break; done\nfor x; do continue; done\n")
	fn := unwrap(t, prog.Body[0]).(*ast.FunctionDeclaration)
	body := fn.Body.(*ast.BraceGroup)
	pipeline := body.Body[0].(*ast.Pipeline)
	ret, ok := pipeline.Commands[0].(*ast.ReturnStatement)
	if !ok || ret.Value.Value != "1" {
		t.Fatalf("expected return 1, got %#v", pipeline.Commands[0])
	}

	forBreak := unwrap(t, prog.Body[1]).(*ast.ForStatement)
	breakPipeline := forBreak.Body[0].(*ast.Pipeline)
	if _, ok := breakPipeline.Commands[0].(*ast.BreakStatement); !ok {
		t.Fatalf("expected *ast.BreakStatement, got %T", breakPipeline.Commands[0])
	}

	forContinue := unwrap(t, prog.Body[2]).(*ast.ForStatement)
	continuePipeline := forContinue.Body[0].(*ast.Pipeline)
	if _, ok := continuePipeline.Commands[0].(*ast.ContinueStatement); !ok {
		t.Fatalf("expected *ast.ContinueStatement, got %T", continuePipeline.Commands[0])
	}
}

func TestParseRedirections(t *testing.T) {
	prog := mustParse(t, "cmd > out.txt 2>&1 < in.txt\n")
	cmd := singleCommand(t, prog.Body[0])
	if len(cmd.Redirects) != 3 {
		t.Fatalf("expected 3 redirections, got %d", len(cmd.Redirects))
	}
	if cmd.Redirects[0].Operator != ast.RedirGreat || cmd.Redirects[0].Target.Value != "out.txt" {
		t.Fatalf("unexpected first redirection: %#v", cmd.Redirects[0])
	}
	if cmd.Redirects[1].Operator != ast.RedirGreatAmp || !cmd.Redirects[1].TargetIsFd || cmd.Redirects[1].TargetFd != 1 {
		t.Fatalf("unexpected fd-duplication redirection: %#v", cmd.Redirects[1])
	}
	if cmd.Redirects[1].Fd != 2 {
		t.Fatalf("expected source fd 2 for 2>&1, got %d", cmd.Redirects[1].Fd)
	}
}

func TestParseHeredoc(t *testing.T) {
	src := "cat <<EOF\nhello\nworld\nEOF\n"
	prog := mustParse(t, src)
	cmd := singleCommand(t, prog.Body[0])
	if len(cmd.Redirects) != 1 {
		t.Fatalf("expected 1 redirection, got %d", len(cmd.Redirects))
	}
	redir := cmd.Redirects[0]
	if redir.Operator != ast.RedirDLess {
		t.Fatalf("expected RedirDLess, got %v", redir.Operator)
	}
	if redir.Target == nil || redir.Target.Value != "hello\nworld\n" {
		t.Fatalf("unexpected heredoc body: %#v", redir.Target)
	}
}

func TestParseProcessSubstitution(t *testing.T) {
	prog := mustParse(t, "diff <(sort a) <(sort b)\n")
	cmd := singleCommand(t, prog.Body[0])
	if len(cmd.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(cmd.Args))
	}
	if len(cmd.Args[0].Parts) != 1 {
		t.Fatalf("expected the process substitution to be the whole word, got %d parts", len(cmd.Args[0].Parts))
	}
	ps, ok := cmd.Args[0].Parts[0].(*ast.ProcessSubstitution)
	if !ok || ps.Direction != '<' {
		t.Fatalf("expected a '<' process substitution, got %#v", cmd.Args[0].Parts[0])
	}
}

func TestParseArrayAssignment(t *testing.T) {
	prog := mustParse(t, "arr=(a b c)\n")
	va := unwrap(t, prog.Body[0]).(*ast.VariableAssignment)
	if va.Assignment.Array == nil {
		t.Fatalf("expected an array literal assignment")
	}
	if len(va.Assignment.Array.Elements) != 3 {
		t.Fatalf("expected 3 array elements, got %d", len(va.Assignment.Array.Elements))
	}
}

func TestParseDialectCompatibilityWarning(t *testing.T) {
	_, p := ParseWithRecovery("[[ -f a ]]\n", dialect.Sh)
	if !p.diags.HasWarnings() {
		t.Fatalf("expected a dialect compatibility warning for [[ ]] under sh")
	}
}

func TestParseWithRecoveryCollectsMultipleErrors(t *testing.T) {
	prog, p := ParseWithRecovery("if then fi\necho after\n", dialect.Bash)
	if prog == nil {
		t.Fatalf("expected a non-nil program even after a recovered error")
	}
	if !p.diags.HasErrors() {
		t.Fatalf("expected at least one recorded error")
	}
}

func TestStrictModeReturnsSyntaxError(t *testing.T) {
	_, _, err := Parse("if then fi\n", dialect.Bash)
	if err == nil {
		t.Fatalf("expected a syntax error in strict mode")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}
