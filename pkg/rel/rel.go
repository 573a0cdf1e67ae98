// Package rel holds the relational intermediate representation shared by
// every compilation stage: logical operator trees produced by the language
// front ends and physical operator trees produced by the planner.
package rel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema describes a stored relation.
type Schema struct {
	ColumnNames []string `json:"columnNames"`
	ColumnTypes []string `json:"columnTypes"`
}

func (s *Schema) Arity() int {
	return len(s.ColumnNames)
}

// Operand is one side of an equality comparison: either a positional
// column reference or a constant.
type Operand struct {
	IsCol bool
	Col   int
	IsStr bool
	Str   string
	Num   int64
}

func ColRef(i int) Operand      { return Operand{IsCol: true, Col: i} }
func IntConst(n int64) Operand  { return Operand{Num: n} }
func StrConst(s string) Operand { return Operand{IsStr: true, Str: s} }

func (o Operand) String() string {
	switch {
	case o.IsCol:
		return fmt.Sprintf("$%d", o.Col)
	case o.IsStr:
		return fmt.Sprintf("'%s'", o.Str)
	default:
		return fmt.Sprintf("%d", o.Num)
	}
}

func (o Operand) MarshalJSON() ([]byte, error) {
	if o.IsCol {
		return json.Marshal(map[string]any{"col": o.Col})
	}
	if o.IsStr {
		return json.Marshal(map[string]any{"str": o.Str})
	}
	return json.Marshal(map[string]any{"num": o.Num})
}

// Comparison is an equality predicate between two operands.
type Comparison struct {
	Left  Operand `json:"left"`
	Right Operand `json:"right"`
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s = %s", c.Left, c.Right)
}

// JoinCond equates a column of the left join input with a column of the
// right one. Columns are positional within each input.
type JoinCond struct {
	LeftCol  int `json:"leftCol"`
	RightCol int `json:"rightCol"`
}

func (jc JoinCond) String() string {
	return fmt.Sprintf("$%d = $%d", jc.LeftCol, jc.RightCol)
}

// Op is a logical operator tree node.
type Op interface {
	OpName() string
	Inputs() []Op
	String() string
}

// Scan reads a stored relation. Scheme is nil until the relation has been
// resolved against a catalog.
type Scan struct {
	Relation string
	Scheme   *Schema
}

func (s *Scan) OpName() string { return "Scan" }
func (s *Scan) Inputs() []Op   { return nil }
func (s *Scan) String() string { return fmt.Sprintf("Scan(%s)", s.Relation) }

// SelectOp filters its input by equality predicates.
type SelectOp struct {
	Input Op
	Preds []Comparison
}

func (s *SelectOp) OpName() string { return "Select" }
func (s *SelectOp) Inputs() []Op   { return []Op{s.Input} }
func (s *SelectOp) String() string {
	return fmt.Sprintf("Select(%s)[%s]", joinStrings(s.Preds), s.Input)
}

// Project keeps the given input columns, in order.
type Project struct {
	Input Op
	Cols  []int
}

func (p *Project) OpName() string { return "Project" }
func (p *Project) Inputs() []Op   { return []Op{p.Input} }
func (p *Project) String() string {
	cols := make([]string, len(p.Cols))
	for i, c := range p.Cols {
		cols[i] = fmt.Sprintf("$%d", c)
	}
	return fmt.Sprintf("Project(%s)[%s]", strings.Join(cols, ","), p.Input)
}

// Join is an equi-join; its output columns are the left columns followed
// by the right ones.
type Join struct {
	Left  Op
	Right Op
	Conds []JoinCond
}

func (j *Join) OpName() string { return "Join" }
func (j *Join) Inputs() []Op   { return []Op{j.Left, j.Right} }
func (j *Join) String() string {
	return fmt.Sprintf("Join(%s)[%s, %s]", joinStrings(j.Conds), j.Left, j.Right)
}

func joinStrings[T fmt.Stringer](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, ", ")
}

// Binding names the relation an operator tree produces.
type Binding struct {
	Name string
	Expr Op
}

func (b Binding) String() string {
	return fmt.Sprintf("%s = %s", b.Name, b.Expr)
}

// LogicalPlan is the language-agnostic form of a compiled query: named
// output relations bound to expressions over source relations. It is
// built once per request and never mutated afterwards.
type LogicalPlan struct {
	Bindings []Binding
}

func (p *LogicalPlan) String() string {
	lines := make([]string, len(p.Bindings))
	for i, b := range p.Bindings {
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (p *LogicalPlan) MarshalJSON() ([]byte, error) {
	bindings := make([]map[string]any, len(p.Bindings))
	for i, b := range p.Bindings {
		bindings[i] = map[string]any{
			"output": b.Name,
			"expr":   encodeOp(b.Expr),
		}
	}
	return json.Marshal(map[string]any{"bindings": bindings})
}

func encodeOp(op Op) map[string]any {
	m := map[string]any{"opType": op.OpName()}
	switch o := op.(type) {
	case *Scan:
		m["relation"] = o.Relation
		if o.Scheme != nil {
			m["schema"] = o.Scheme
		}
	case *SelectOp:
		m["predicates"] = o.Preds
		m["input"] = encodeOp(o.Input)
	case *Project:
		m["columns"] = o.Cols
		m["input"] = encodeOp(o.Input)
	case *Join:
		m["conditions"] = o.Conds
		m["left"] = encodeOp(o.Left)
		m["right"] = encodeOp(o.Right)
	}
	return m
}
