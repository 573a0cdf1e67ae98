// Package planner turns logical plans into physical plans under a
// target algebra. This is the only stage that resolves relations the
// language front end left unresolved; an unresolvable relation is
// terminal for the request.
package planner

import (
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
)

// Physicalize realizes lp under alg. The algebra was chosen before
// staging began and is never revisited here. pushSQL only matters for
// SQL-capable algebras; elsewhere it is accepted and ignored.
func Physicalize(lp *rel.LogicalPlan, alg algebra.TargetAlgebra, cat catalog.Catalog, pushSQL bool) (*rel.PhysicalPlan, error) {
	pz := &physicalizer{
		alg:     alg,
		cat:     cat,
		pushSQL: pushSQL && alg.SQLPushdown(),
	}

	pp := &rel.PhysicalPlan{Algebra: alg.Name()}
	for _, b := range lp.Bindings {
		root, _, err := pz.physOp(b.Expr)
		if err != nil {
			return nil, err
		}
		pp.Bindings = append(pp.Bindings, rel.PhysBinding{Name: b.Name, Root: root})
	}
	return pp, nil
}

type physicalizer struct {
	alg     algebra.TargetAlgebra
	cat     catalog.Catalog
	pushSQL bool
}

// physOp lowers one logical subtree, returning the physical operator
// and its output arity.
func (pz *physicalizer) physOp(op rel.Op) (rel.PhysOp, int, error) {
	if pz.pushSQL {
		if ps, arity, ok, err := pz.pushdown(op); err != nil {
			return nil, 0, err
		} else if ok {
			return ps, arity, nil
		}
	}

	switch o := op.(type) {
	case *rel.Scan:
		scheme, err := pz.resolve(o)
		if err != nil {
			return nil, 0, err
		}
		return &rel.TableScan{Relation: o.Relation, Scheme: scheme}, scheme.Arity(), nil

	case *rel.SelectOp:
		in, arity, err := pz.physOp(o.Input)
		if err != nil {
			return nil, 0, err
		}
		for _, cmp := range o.Preds {
			if err := checkOperand(cmp.Left, arity); err != nil {
				return nil, 0, err
			}
			if err := checkOperand(cmp.Right, arity); err != nil {
				return nil, 0, err
			}
		}
		return &rel.Filter{Input: in, Preds: o.Preds}, arity, nil

	case *rel.Project:
		in, arity, err := pz.physOp(o.Input)
		if err != nil {
			return nil, 0, err
		}
		for _, c := range o.Cols {
			if c >= arity {
				return nil, 0, ferror.New(ferror.FQ_SEMANTIC, "column $%d out of range", c)
			}
		}
		return &rel.Apply{Input: in, Cols: o.Cols}, len(o.Cols), nil

	case *rel.Join:
		return pz.physJoin(o)

	default:
		return nil, 0, ferror.New(ferror.FQ_UNSUPPORTED, "unknown logical operator %T", op)
	}
}

func (pz *physicalizer) physJoin(j *rel.Join) (rel.PhysOp, int, error) {
	left, larity, err := pz.physOp(j.Left)
	if err != nil {
		return nil, 0, err
	}
	right, rarity, err := pz.physOp(j.Right)
	if err != nil {
		return nil, 0, err
	}
	for _, jc := range j.Conds {
		if jc.LeftCol >= larity || jc.RightCol >= rarity {
			return nil, 0, ferror.New(ferror.FQ_SEMANTIC,
				"join condition %s out of range", jc)
		}
	}
	arity := larity + rarity

	switch pz.alg.(type) {
	case algebra.LeftDeepTreeAlgebra:
		return &rel.ShuffleHashJoin{Left: left, Right: right, Conds: j.Conds}, arity, nil

	case algebra.HyperCubeAlgebra:
		workers, err := pz.cat.NumServers()
		if err != nil {
			return nil, 0, err
		}
		dims := hyperCubeDims(workers, len(j.Conds))
		return &rel.HyperCubeShuffleJoin{
			Left: left, Right: right, Conds: j.Conds, Dimensions: dims,
		}, arity, nil

	case algebra.CodegenLocalAlgebra, algebra.CodegenDistAlgebra:
		return &rel.PipelineJoin{Left: left, Right: right, Conds: j.Conds}, arity, nil

	default:
		return nil, 0, ferror.New(ferror.FQ_UNSUPPORTED,
			"no join strategy for algebra %s", pz.alg.Name())
	}
}

func (pz *physicalizer) resolve(sc *rel.Scan) (*rel.Schema, error) {
	if sc.Scheme != nil {
		return sc.Scheme, nil
	}
	return pz.cat.RelationSchema(sc.Relation)
}

func checkOperand(o rel.Operand, arity int) error {
	if o.IsCol && o.Col >= arity {
		return ferror.New(ferror.FQ_SEMANTIC, "column $%d out of range", o.Col)
	}
	return nil
}

// hyperCubeDims spreads workers over one axis per join condition; the
// product of extents never exceeds the worker count.
func hyperCubeDims(workers, conds int) []int {
	if conds < 1 {
		conds = 1
	}
	dims := make([]int, conds)
	for i := range dims {
		dims[i] = 1
	}
	// grow axes round-robin while the cube still fits
	for {
		grown := false
		for i := range dims {
			product := 1
			for j, d := range dims {
				if j == i {
					product *= d + 1
				} else {
					product *= d
				}
			}
			if product <= workers {
				dims[i]++
				grown = true
			}
		}
		if !grown {
			return dims
		}
	}
}
