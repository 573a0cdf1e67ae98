package planner

import (
	"fmt"
	"strings"

	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
)

// pushdown collapses a maximal Project/Select chain over a single scan
// into one SQLScan running inside the backend's SQL layer. Subtrees
// containing joins or repeated operators fall through to the regular
// lowering. Returns ok=false when op is not such a chain.
func (pz *physicalizer) pushdown(op rel.Op) (rel.PhysOp, int, bool, error) {
	var cols []int
	var preds []rel.Comparison

	cur := op
	if p, isProject := cur.(*rel.Project); isProject {
		cols = p.Cols
		cur = p.Input
	}
	if s, isSelect := cur.(*rel.SelectOp); isSelect {
		preds = s.Preds
		cur = s.Input
	}
	scan, isScan := cur.(*rel.Scan)
	if !isScan {
		return nil, 0, false, nil
	}

	scheme, err := pz.resolve(scan)
	if err != nil {
		return nil, 0, false, err
	}

	sql, arity, err := scanSQL(scan.Relation, scheme, preds, cols)
	if err != nil {
		return nil, 0, false, err
	}
	return &rel.SQLScan{Relation: scan.Relation, SQL: sql}, arity, true, nil
}

func scanSQL(relation string, scheme *rel.Schema, preds []rel.Comparison, cols []int) (string, int, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	arity := scheme.Arity()
	if cols == nil {
		sb.WriteString(strings.Join(scheme.ColumnNames, ", "))
	} else {
		names := make([]string, len(cols))
		for i, c := range cols {
			if c >= arity {
				return "", 0, ferror.New(ferror.FQ_SEMANTIC, "column $%d out of range", c)
			}
			names[i] = scheme.ColumnNames[c]
		}
		sb.WriteString(strings.Join(names, ", "))
		arity = len(cols)
	}

	sb.WriteString(" FROM ")
	sb.WriteString(relation)

	if len(preds) > 0 {
		sb.WriteString(" WHERE ")
		for i, cmp := range preds {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			lhs, err := operandSQL(cmp.Left, scheme)
			if err != nil {
				return "", 0, err
			}
			rhs, err := operandSQL(cmp.Right, scheme)
			if err != nil {
				return "", 0, err
			}
			fmt.Fprintf(&sb, "%s = %s", lhs, rhs)
		}
	}

	return sb.String(), arity, nil
}

func operandSQL(o rel.Operand, scheme *rel.Schema) (string, error) {
	switch {
	case o.IsCol:
		if o.Col >= scheme.Arity() {
			return "", ferror.New(ferror.FQ_SEMANTIC, "column $%d out of range", o.Col)
		}
		return scheme.ColumnNames[o.Col], nil
	case o.IsStr:
		return "'" + strings.ReplaceAll(o.Str, "'", "''") + "'", nil
	default:
		return fmt.Sprintf("%d", o.Num), nil
	}
}
