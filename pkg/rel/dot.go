package rel

import (
	"fmt"
	"strings"
)

// DotLogical renders a logical plan in graphviz dot form, one cluster
// per output binding, edges pointing from inputs to consumers.
func DotLogical(p *LogicalPlan) string {
	var sb strings.Builder
	sb.WriteString("digraph logical_plan {\n")
	sb.WriteString("  rankdir=BT;\n")
	next := 0
	for _, b := range p.Bindings {
		root := dotOp(&sb, b.Expr, &next)
		sink := fmt.Sprintf("n%d", next)
		next++
		fmt.Fprintf(&sb, "  %s [label=%q, shape=box];\n", sink, b.Name)
		fmt.Fprintf(&sb, "  %s -> %s;\n", root, sink)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// DotPhysical renders a physical plan in graphviz dot form.
func DotPhysical(p *PhysicalPlan) string {
	var sb strings.Builder
	sb.WriteString("digraph physical_plan {\n")
	sb.WriteString("  rankdir=BT;\n")
	fmt.Fprintf(&sb, "  label=%q;\n", p.Algebra)
	next := 0
	for _, b := range p.Bindings {
		root := dotPhysOp(&sb, b.Root, &next)
		sink := fmt.Sprintf("n%d", next)
		next++
		fmt.Fprintf(&sb, "  %s [label=%q, shape=box];\n", sink, b.Name)
		fmt.Fprintf(&sb, "  %s -> %s;\n", root, sink)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func dotOp(sb *strings.Builder, op Op, next *int) string {
	id := fmt.Sprintf("n%d", *next)
	(*next)++
	fmt.Fprintf(sb, "  %s [label=%q];\n", id, dotLabel(op.OpName(), opDetail(op)))
	for _, in := range op.Inputs() {
		child := dotOp(sb, in, next)
		fmt.Fprintf(sb, "  %s -> %s;\n", child, id)
	}
	return id
}

func dotPhysOp(sb *strings.Builder, op PhysOp, next *int) string {
	id := fmt.Sprintf("n%d", *next)
	(*next)++
	fmt.Fprintf(sb, "  %s [label=%q];\n", id, dotLabel(op.PhysOpName(), physOpDetail(op)))
	for _, in := range op.PhysInputs() {
		child := dotPhysOp(sb, in, next)
		fmt.Fprintf(sb, "  %s -> %s;\n", child, id)
	}
	return id
}

func dotLabel(name, detail string) string {
	if detail == "" {
		return name
	}
	return fmt.Sprintf("%s\n%s", name, detail)
}

func opDetail(op Op) string {
	switch o := op.(type) {
	case *Scan:
		return o.Relation
	case *SelectOp:
		return joinStrings(o.Preds)
	case *Join:
		return joinStrings(o.Conds)
	}
	return ""
}

func physOpDetail(op PhysOp) string {
	switch o := op.(type) {
	case *TableScan:
		return o.Relation
	case *SQLScan:
		return o.SQL
	case *Filter:
		return joinStrings(o.Preds)
	case *ShuffleHashJoin:
		return joinStrings(o.Conds)
	case *HyperCubeShuffleJoin:
		return fmt.Sprintf("%s dims=%v", joinStrings(o.Conds), o.Dimensions)
	case *PipelineJoin:
		return joinStrings(o.Conds)
	}
	return ""
}
