// Package logic compiles the Datalog-like logic language. The compiler
// is stateless across requests: a fresh instance is constructed per
// compilation and needs no external synchronization.
package logic

import (
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/frontierdb/frontier/planner"
)

type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile parses a logic program and builds its logical plan: one
// binding per rule, joining body atoms on shared variables, selecting
// on constants, projecting the head variables.
func (c *Compiler) Compile(query string) (*rel.LogicalPlan, error) {
	rules, err := parseProgram(query)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ferror.New(ferror.FQ_SYNTAX, "unable to parse logic program")
	}

	plan := &rel.LogicalPlan{}
	for _, r := range rules {
		b, err := buildRule(r)
		if err != nil {
			return nil, err
		}
		plan.Bindings = append(plan.Bindings, b)
	}
	return plan, nil
}

// Optimize lowers a compiled logical plan to the physical plan for the
// chosen target algebra.
func (c *Compiler) Optimize(lp *rel.LogicalPlan, alg algebra.TargetAlgebra, cat catalog.Catalog, pushSQL bool) (*rel.PhysicalPlan, error) {
	return planner.Physicalize(lp, alg, cat, pushSQL)
}

func buildRule(r rule) (rel.Binding, error) {
	if len(r.body) == 0 {
		return rel.Binding{}, ferror.New(ferror.FQ_SYNTAX, "rule %s has an empty body", r.head.name)
	}

	// varPos tracks each variable's column in the running join output.
	varPos := map[string]int{}
	op, width := atomOp(r.body[0], varPos, 0)

	for _, a := range r.body[1:] {
		rightPos := map[string]int{}
		right, rightWidth := atomOp(a, rightPos, 0)

		// Join conditions in right-atom column order, first occurrence
		// of each variable only, so identical input yields an identical
		// plan.
		var conds []rel.JoinCond
		for i, t := range a.terms {
			if t.kind != termVar || rightPos[t.ident] != i {
				continue
			}
			if lc, ok := varPos[t.ident]; ok {
				conds = append(conds, rel.JoinCond{LeftCol: lc, RightCol: i})
			} else {
				varPos[t.ident] = width + i
			}
		}
		op = &rel.Join{Left: op, Right: right, Conds: conds}
		width += rightWidth
	}

	cols := make([]int, len(r.head.terms))
	for i, t := range r.head.terms {
		if t.kind != termVar {
			return rel.Binding{}, ferror.New(ferror.FQ_SEMANTIC,
				"constant in head of rule %s", r.head.name)
		}
		pos, ok := varPos[t.ident]
		if !ok {
			return rel.Binding{}, ferror.New(ferror.FQ_SEMANTIC,
				"variable %s in head of rule %s is not bound in its body", t.ident, r.head.name)
		}
		cols[i] = pos
	}

	return rel.Binding{Name: r.head.name, Expr: &rel.Project{Input: op, Cols: cols}}, nil
}

// atomOp turns one body atom into a scan with selections for constants
// and repeated variables, recording variable positions into varPos.
func atomOp(a atom, varPos map[string]int, base int) (rel.Op, int) {
	var op rel.Op = &rel.Scan{Relation: a.name}
	var preds []rel.Comparison

	for i, t := range a.terms {
		switch t.kind {
		case termVar:
			if prev, ok := varPos[t.ident]; ok {
				preds = append(preds, rel.Comparison{
					Left:  rel.ColRef(i),
					Right: rel.ColRef(prev - base),
				})
			} else {
				varPos[t.ident] = base + i
			}
		case termInt:
			preds = append(preds, rel.Comparison{Left: rel.ColRef(i), Right: rel.IntConst(t.num)})
		case termStr:
			preds = append(preds, rel.Comparison{Left: rel.ColRef(i), Right: rel.StrConst(t.str)})
		}
	}

	if len(preds) > 0 {
		op = &rel.SelectOp{Input: op, Preds: preds}
	}
	return op, len(a.terms)
}
