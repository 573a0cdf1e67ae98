package rel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PhysOp is a physical operator tree node. Unlike logical ops, physical
// ops are specific to one target algebra and carry placement decisions.
type PhysOp interface {
	PhysOpName() string
	PhysInputs() []PhysOp
	String() string
}

// TableScan reads a stored relation on the executing worker.
type TableScan struct {
	Relation string
	Scheme   *Schema
}

func (t *TableScan) PhysOpName() string  { return "TableScan" }
func (t *TableScan) PhysInputs() []PhysOp { return nil }
func (t *TableScan) String() string      { return fmt.Sprintf("TableScan(%s)", t.Relation) }

// SQLScan runs a pushed-down SQL statement inside the backend's SQL
// storage layer and streams the result into the plan.
type SQLScan struct {
	Relation string
	SQL      string
}

func (s *SQLScan) PhysOpName() string  { return "SQLScan" }
func (s *SQLScan) PhysInputs() []PhysOp { return nil }
func (s *SQLScan) String() string      { return fmt.Sprintf("SQLScan[%s]", s.SQL) }

// Filter applies equality predicates tuple-at-a-time.
type Filter struct {
	Input PhysOp
	Preds []Comparison
}

func (f *Filter) PhysOpName() string  { return "Filter" }
func (f *Filter) PhysInputs() []PhysOp { return []PhysOp{f.Input} }
func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s)[%s]", joinStrings(f.Preds), f.Input)
}

// Apply keeps the given columns of its input.
type Apply struct {
	Input PhysOp
	Cols  []int
}

func (a *Apply) PhysOpName() string  { return "Apply" }
func (a *Apply) PhysInputs() []PhysOp { return []PhysOp{a.Input} }
func (a *Apply) String() string {
	cols := make([]string, len(a.Cols))
	for i, c := range a.Cols {
		cols[i] = fmt.Sprintf("$%d", c)
	}
	return fmt.Sprintf("Apply(%s)[%s]", strings.Join(cols, ","), a.Input)
}

// ShuffleHashJoin hash-partitions both inputs on the join columns and
// joins pairwise. The left-deep-tree algebra's only join operator.
type ShuffleHashJoin struct {
	Left  PhysOp
	Right PhysOp
	Conds []JoinCond
}

func (j *ShuffleHashJoin) PhysOpName() string  { return "ShuffleHashJoin" }
func (j *ShuffleHashJoin) PhysInputs() []PhysOp { return []PhysOp{j.Left, j.Right} }
func (j *ShuffleHashJoin) String() string {
	return fmt.Sprintf("ShuffleHashJoin(%s)[%s, %s]", joinStrings(j.Conds), j.Left, j.Right)
}

// HyperCubeShuffleJoin distributes tuples over a hypercube of workers so
// a multiway join evaluates in one round. Dimensions holds the cube's
// per-axis extents; their product never exceeds the live worker count.
type HyperCubeShuffleJoin struct {
	Left       PhysOp
	Right      PhysOp
	Conds      []JoinCond
	Dimensions []int
}

func (j *HyperCubeShuffleJoin) PhysOpName() string  { return "HyperCubeShuffleJoin" }
func (j *HyperCubeShuffleJoin) PhysInputs() []PhysOp { return []PhysOp{j.Left, j.Right} }
func (j *HyperCubeShuffleJoin) String() string {
	return fmt.Sprintf("HyperCubeShuffleJoin(%s, dims=%v)[%s, %s]",
		joinStrings(j.Conds), j.Dimensions, j.Left, j.Right)
}

// PipelineJoin is the code-generation join: tuples flow through fused
// loops without materialization.
type PipelineJoin struct {
	Left  PhysOp
	Right PhysOp
	Conds []JoinCond
}

func (j *PipelineJoin) PhysOpName() string  { return "PipelineJoin" }
func (j *PipelineJoin) PhysInputs() []PhysOp { return []PhysOp{j.Left, j.Right} }
func (j *PipelineJoin) String() string {
	return fmt.Sprintf("PipelineJoin(%s)[%s, %s]", joinStrings(j.Conds), j.Left, j.Right)
}

// PhysBinding names the relation a physical operator tree produces.
type PhysBinding struct {
	Name string
	Root PhysOp
}

func (b PhysBinding) String() string {
	return fmt.Sprintf("%s = %s", b.Name, b.Root)
}

// PhysicalPlan is a LogicalPlan realized under exactly one target
// algebra. The algebra is chosen before staging begins and never changes
// mid-pipeline.
type PhysicalPlan struct {
	Algebra  string
	Bindings []PhysBinding
}

func (p *PhysicalPlan) String() string {
	lines := make([]string, len(p.Bindings))
	for i, b := range p.Bindings {
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (p *PhysicalPlan) MarshalJSON() ([]byte, error) {
	bindings := make([]map[string]any, len(p.Bindings))
	for i, b := range p.Bindings {
		bindings[i] = map[string]any{
			"output": b.Name,
			"root":   EncodePhysOp(b.Root),
		}
	}
	return json.Marshal(map[string]any{
		"algebra":  p.Algebra,
		"bindings": bindings,
	})
}

// EncodePhysOp renders a physical operator subtree as the generic JSON
// form used both in HTTP responses and in compiled programs.
func EncodePhysOp(op PhysOp) map[string]any {
	m := map[string]any{"opType": op.PhysOpName()}
	switch o := op.(type) {
	case *TableScan:
		m["relation"] = o.Relation
		if o.Scheme != nil {
			m["schema"] = o.Scheme
		}
	case *SQLScan:
		m["relation"] = o.Relation
		m["sql"] = o.SQL
	case *Filter:
		m["predicates"] = o.Preds
		m["input"] = EncodePhysOp(o.Input)
	case *Apply:
		m["columns"] = o.Cols
		m["input"] = EncodePhysOp(o.Input)
	case *ShuffleHashJoin:
		m["conditions"] = o.Conds
		m["left"] = EncodePhysOp(o.Left)
		m["right"] = EncodePhysOp(o.Right)
	case *HyperCubeShuffleJoin:
		m["conditions"] = o.Conds
		m["dimensions"] = o.Dimensions
		m["left"] = EncodePhysOp(o.Left)
		m["right"] = EncodePhysOp(o.Right)
	case *PipelineJoin:
		m["conditions"] = o.Conds
		m["left"] = EncodePhysOp(o.Left)
		m["right"] = EncodePhysOp(o.Right)
	}
	return m
}
