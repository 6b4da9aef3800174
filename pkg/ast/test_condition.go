package ast

// TestCondition is the sealed family of nodes making up a `[[ ... ]]`
// expression tree.
type TestCondition interface {
	Node
	testConditionNode()
}

func (*UnaryTest) testConditionNode()   {}
func (*BinaryTest) testConditionNode()  {}
func (*LogicalTest) testConditionNode() {}
func (*StringTest) testConditionNode()  {}

// UnaryTest is a single-operand test such as `-f /path`, `-z "$x"`.
type UnaryTest struct {
	base
	Operator string // "-e", "-f", "-d", "-z", "-n", ...
	Operand  *Word
}

// BinaryTest is a two-operand test: string (`=`, `==`, `!=`, `<`, `>`),
// numeric (`-eq`, `-ne`, `-lt`, `-le`, `-gt`, `-ge`), file (`-nt`, `-ot`,
// `-ef`) or regex (`=~`).
type BinaryTest struct {
	base
	Operator string
	Left     *Word
	Right    *Word
}

// LogicalTest combines test conditions with `!` (prefix, Right only),
// `&&` or `||` (both operands set).
type LogicalTest struct {
	base
	Operator string // "!", "&&", "||"
	Left     TestCondition // nil for "!"
	Right    TestCondition
}

// StringTest is a bare word used as an implicit `-n` test, e.g. `[[ $x ]]`.
type StringTest struct {
	base
	Operand *Word
}
