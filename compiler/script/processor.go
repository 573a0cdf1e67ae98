package script

import (
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/frontierdb/frontier/planner"
)

type binding struct {
	op    rel.Op
	arity int
}

// Processor evaluates a parsed statement sequence against a catalog,
// building the logical plan. One processor serves one request; it keeps
// the evaluated environment so the physical stage reuses it instead of
// re-parsing.
type Processor struct {
	cat catalog.Catalog

	env        map[string]binding
	outputs    []rel.Binding
	lastAssign string
}

func NewProcessor(cat catalog.Catalog) *Processor {
	return &Processor{
		cat: cat,
		env: map[string]binding{},
	}
}

// Evaluate walks the statement sequence. Referencing an unknown
// relation or binding is a semantic error, distinct from the syntax
// errors the grammar engine raises.
func (p *Processor) Evaluate(stmts []Statement) error {
	for _, st := range stmts {
		switch s := st.(type) {
		case *Assign:
			b, err := p.evalSource(s.Source)
			if err != nil {
				return err
			}
			p.env[s.Target] = b
			p.lastAssign = s.Target
		case *Store:
			b, ok := p.env[s.Binding]
			if !ok {
				return ferror.New(ferror.FQ_SEMANTIC, "binding %s is not defined", s.Binding)
			}
			p.outputs = append(p.outputs, rel.Binding{Name: s.Relation, Expr: b.op})
		default:
			return ferror.New(ferror.FQ_UNSUPPORTED, "unknown statement form %T", st)
		}
	}
	return nil
}

// LogicalPlan returns the plan of the stored outputs. A program with no
// store statement yields its last assignment.
func (p *Processor) LogicalPlan() (*rel.LogicalPlan, error) {
	if len(p.outputs) > 0 {
		return &rel.LogicalPlan{Bindings: p.outputs}, nil
	}
	if p.lastAssign == "" {
		return nil, ferror.New(ferror.FQ_SEMANTIC, "program produces no output")
	}
	return &rel.LogicalPlan{
		Bindings: []rel.Binding{{Name: p.lastAssign, Expr: p.env[p.lastAssign].op}},
	}, nil
}

// PhysicalPlan lowers the evaluated program under the target algebra.
func (p *Processor) PhysicalPlan(alg algebra.TargetAlgebra, pushSQL bool) (*rel.PhysicalPlan, error) {
	lp, err := p.LogicalPlan()
	if err != nil {
		return nil, err
	}
	return planner.Physicalize(lp, alg, p.cat, pushSQL)
}

func (p *Processor) evalSource(src SourceExpr) (binding, error) {
	switch s := src.(type) {
	case *ScanExpr:
		scheme, err := p.cat.RelationSchema(s.Relation)
		if err != nil {
			return binding{}, err
		}
		return binding{
			op:    &rel.Scan{Relation: s.Relation, Scheme: scheme},
			arity: scheme.Arity(),
		}, nil

	case *FilterExpr:
		in, err := p.lookup(s.Input)
		if err != nil {
			return binding{}, err
		}
		for _, cmp := range s.Preds {
			if err := p.checkCol(cmp.Left, in.arity, s.Input); err != nil {
				return binding{}, err
			}
			if err := p.checkCol(cmp.Right, in.arity, s.Input); err != nil {
				return binding{}, err
			}
		}
		return binding{
			op:    &rel.SelectOp{Input: in.op, Preds: s.Preds},
			arity: in.arity,
		}, nil

	case *JoinExpr:
		left, err := p.lookup(s.Left)
		if err != nil {
			return binding{}, err
		}
		right, err := p.lookup(s.Right)
		if err != nil {
			return binding{}, err
		}
		for _, jc := range s.Conds {
			if jc.LeftCol >= left.arity {
				return binding{}, ferror.New(ferror.FQ_SEMANTIC,
					"column $%d out of range for %s", jc.LeftCol, s.Left)
			}
			if jc.RightCol >= right.arity {
				return binding{}, ferror.New(ferror.FQ_SEMANTIC,
					"column $%d out of range for %s", jc.RightCol, s.Right)
			}
		}
		return binding{
			op:    &rel.Join{Left: left.op, Right: right.op, Conds: s.Conds},
			arity: left.arity + right.arity,
		}, nil

	case *ProjectExpr:
		in, err := p.lookup(s.Input)
		if err != nil {
			return binding{}, err
		}
		for _, c := range s.Cols {
			if c >= in.arity {
				return binding{}, ferror.New(ferror.FQ_SEMANTIC,
					"column $%d out of range for %s", c, s.Input)
			}
		}
		return binding{
			op:    &rel.Project{Input: in.op, Cols: s.Cols},
			arity: len(s.Cols),
		}, nil

	case *SQLSelectExpr:
		return p.evalSQLSelect(s)

	default:
		return binding{}, ferror.New(ferror.FQ_UNSUPPORTED, "unknown source expression %T", src)
	}
}

func (p *Processor) evalSQLSelect(s *SQLSelectExpr) (binding, error) {
	scheme, err := p.cat.RelationSchema(s.Relation)
	if err != nil {
		return binding{}, err
	}

	var op rel.Op = &rel.Scan{Relation: s.Relation, Scheme: scheme}

	if s.Where != nil {
		col, err := columnIndex(scheme, s.Relation, s.Where.Column)
		if err != nil {
			return binding{}, err
		}
		op = &rel.SelectOp{
			Input: op,
			Preds: []rel.Comparison{{Left: rel.ColRef(col), Right: s.Where.Value}},
		}
	}

	if s.Star {
		return binding{op: op, arity: scheme.Arity()}, nil
	}

	cols := make([]int, len(s.Columns))
	for i, name := range s.Columns {
		col, err := columnIndex(scheme, s.Relation, name)
		if err != nil {
			return binding{}, err
		}
		cols[i] = col
	}
	return binding{op: &rel.Project{Input: op, Cols: cols}, arity: len(cols)}, nil
}

func (p *Processor) lookup(name string) (binding, error) {
	b, ok := p.env[name]
	if !ok {
		return binding{}, ferror.New(ferror.FQ_SEMANTIC, "binding %s is not defined", name)
	}
	return b, nil
}

func (p *Processor) checkCol(o rel.Operand, arity int, input string) error {
	if o.IsCol && o.Col >= arity {
		return ferror.New(ferror.FQ_SEMANTIC, "column $%d out of range for %s", o.Col, input)
	}
	return nil
}

func columnIndex(scheme *rel.Schema, relation, column string) (int, error) {
	for i, name := range scheme.ColumnNames {
		if name == column {
			return i, nil
		}
	}
	return 0, ferror.New(ferror.FQ_SEMANTIC, "column %s not known in relation %s", column, relation)
}
