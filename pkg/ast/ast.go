// Package ast defines SafeShell's abstract syntax tree: a closed family of
// tagged node types produced by the grammar parser (internal/parser) and the
// arithmetic Pratt parser (internal/arith).
//
// The family is closed by construction: every node type implements one of
// the sealed interfaces below via an unexported marker method, so the only
// way to add a new variant is from inside this package. Consumers are
// expected to use type switches (pattern matching), never an open-ended
// virtual-dispatch visitor, to operate on a Node.
package ast

import "github.com/jchip/safeshell/pkg/token"

// Node is the root of the AST type family. Every node can report the source
// span it was parsed from and, if it was assigned one, its NodeId.
type Node interface {
	Span() token.Span
	Id() NodeId
}

// base is embedded by every concrete node type to provide the common
// span/id bookkeeping without repeating it on every struct.
type base struct {
	span token.Span
	id   NodeId
}

func (b base) Span() token.Span { return b.span }
func (b base) Id() NodeId       { return b.id }

// SetSpan and SetId are used by the parser immediately after constructing a
// node, before the node is attached to its parent.
func (b *base) SetSpan(s token.Span) { b.span = s }
func (b *base) SetId(id NodeId)      { b.id = id }

// Statement is any node that may appear in a statement list (Program.Body,
// a compound command's body, a case arm's body, ...).
type Statement interface {
	Node
	statementNode()
}

func (*Pipeline) statementNode()            {}
func (*Command) statementNode()             {}
func (*IfStatement) statementNode()         {}
func (*ForStatement) statementNode()        {}
func (*CStyleForStatement) statementNode()  {}
func (*WhileStatement) statementNode()      {}
func (*UntilStatement) statementNode()      {}
func (*CaseStatement) statementNode()       {}
func (*FunctionDeclaration) statementNode() {}
func (*VariableAssignment) statementNode()  {}
func (*Subshell) statementNode()            {}
func (*BraceGroup) statementNode()          {}
func (*TestCommand) statementNode()         {}
func (*ArithmeticCommand) statementNode()   {}
func (*ReturnStatement) statementNode()     {}
func (*BreakStatement) statementNode()      {}
func (*ContinueStatement) statementNode()   {}

// Program is the root node: a script is a flat list of top-level statements.
type Program struct {
	base
	Body []Statement
}
