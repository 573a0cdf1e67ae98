// Package submit serializes physical plans into backend-specific
// executable programs and submits them to the execution services.
package submit

import (
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/frontierdb/frontier/stager"
)

// Program is the backend-specific serialization of a physical plan plus
// the cached logical-plan text. Submitted exactly once per request.
type Program struct {
	RawQuery  string `json:"rawQuery"`
	LogicalRa string `json:"logicalRa"`
	Language  string `json:"language"`

	// Fragments is the clustered engine's executable form.
	Fragments []Fragment `json:"fragments,omitempty"`

	// Plan is the code-generation backends' IR form.
	Plan map[string]any `json:"plan,omitempty"`

	ProfilingMode []string `json:"profilingMode"`
}

// Fragment is one schedulable unit of a clustered-engine program: a
// flat operator list wired by id references.
type Fragment struct {
	Operators []map[string]any `json:"operators"`
}

// Compile assembles the program for the request's backend. Profiling
// adds the QUERY and RESOURCE modes; otherwise the list stays empty,
// not null.
func Compile(req stager.Request, staged *stager.Staged) (*Program, error) {
	prog := &Program{
		RawQuery:      req.Query,
		LogicalRa:     staged.LogicalRa,
		Language:      string(req.Language),
		ProfilingMode: []string{},
	}
	if req.Profile {
		prog.ProfilingMode = []string{"QUERY", "RESOURCE"}
	}

	switch req.Backend {
	case algebra.BackendCluster:
		for _, b := range staged.Physical.Bindings {
			prog.Fragments = append(prog.Fragments, flattenBinding(b))
		}
	case algebra.BackendCodegenLocal, algebra.BackendCodegenDist:
		outputs := make([]map[string]any, len(staged.Physical.Bindings))
		for i, b := range staged.Physical.Bindings {
			outputs[i] = map[string]any{
				"output": b.Name,
				"root":   rel.EncodePhysOp(b.Root),
			}
		}
		prog.Plan = map[string]any{
			"backend": string(req.Backend),
			"algebra": staged.Physical.Algebra,
			"outputs": outputs,
		}
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED, "cannot compile for backend %q", req.Backend)
	}
	return prog, nil
}

// flattenBinding lays one operator tree out as the flat, id-linked list
// the clustered engine executes, ending in a store of the output
// relation.
func flattenBinding(b rel.PhysBinding) Fragment {
	var ops []map[string]any

	var walk func(op rel.PhysOp) int
	walk = func(op rel.PhysOp) int {
		var childIDs []int
		for _, in := range op.PhysInputs() {
			childIDs = append(childIDs, walk(in))
		}

		m := shallowEncode(op)
		id := len(ops)
		m["opId"] = id
		switch len(childIDs) {
		case 1:
			m["argChild"] = childIDs[0]
		case 2:
			m["argChild1"] = childIDs[0]
			m["argChild2"] = childIDs[1]
		}
		ops = append(ops, m)
		return id
	}

	rootID := walk(b.Root)
	ops = append(ops, map[string]any{
		"opId":     len(ops),
		"opType":   "Store",
		"relation": b.Name,
		"argChild": rootID,
	})
	return Fragment{Operators: ops}
}

func shallowEncode(op rel.PhysOp) map[string]any {
	m := map[string]any{"opType": op.PhysOpName()}
	switch o := op.(type) {
	case *rel.TableScan:
		m["relation"] = o.Relation
		if o.Scheme != nil {
			m["schema"] = o.Scheme
		}
	case *rel.SQLScan:
		m["relation"] = o.Relation
		m["sql"] = o.SQL
	case *rel.Filter:
		m["predicates"] = o.Preds
	case *rel.Apply:
		m["columns"] = o.Cols
	case *rel.ShuffleHashJoin:
		m["conditions"] = o.Conds
	case *rel.HyperCubeShuffleJoin:
		m["conditions"] = o.Conds
		m["dimensions"] = o.Dimensions
	case *rel.PipelineJoin:
		m["conditions"] = o.Conds
	}
	return m
}
