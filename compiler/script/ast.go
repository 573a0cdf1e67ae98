// Package script implements the imperative relational scripting
// language and the SQL dialect that shares its grammar engine.
package script

import "github.com/frontierdb/frontier/pkg/rel"

// Statement is one parsed statement of a script program.
type Statement interface {
	stmt()
}

// Assign binds a name to a source expression.
type Assign struct {
	Target string
	Source SourceExpr
}

// Store marks a binding as a query output under the given relation name.
type Store struct {
	Binding  string
	Relation string
}

func (*Assign) stmt() {}
func (*Store) stmt()  {}

// SourceExpr is the right-hand side of an assignment.
type SourceExpr interface {
	source()
}

type ScanExpr struct {
	Relation string
}

type FilterExpr struct {
	Input string
	Preds []rel.Comparison
}

type JoinExpr struct {
	Left  string
	Right string
	Conds []rel.JoinCond
}

type ProjectExpr struct {
	Input string
	Cols  []int
}

// SQLSelectExpr is the desugared form of a SQL SELECT. Column names are
// resolved against the catalog at evaluation time, not at parse time.
type SQLSelectExpr struct {
	Star     bool
	Columns  []string
	Relation string
	Where    *SQLWhere
}

type SQLWhere struct {
	Column string
	Value  rel.Operand
}

func (*ScanExpr) source()      {}
func (*FilterExpr) source()    {}
func (*JoinExpr) source()      {}
func (*ProjectExpr) source()   {}
func (*SQLSelectExpr) source() {}
