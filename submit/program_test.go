package submit_test

import (
	"testing"

	"github.com/frontierdb/frontier/compiler/logic"
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/frontierdb/frontier/planner"
	"github.com/frontierdb/frontier/stager"
	"github.com/frontierdb/frontier/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) RelationSchema(name string) (*rel.Schema, error) {
	if name != "Edges" {
		return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
	}
	return &rel.Schema{
		ColumnNames: []string{"src", "dst"},
		ColumnTypes: []string{"LONG_TYPE", "LONG_TYPE"},
	}, nil
}

func (fakeCatalog) NumServers() (int, error) { return 4, nil }

func stage(t *testing.T, req stager.Request, alg algebra.TargetAlgebra) *stager.Staged {
	t.Helper()
	lp, err := logic.NewCompiler().Compile(req.Query)
	require.NoError(t, err)
	pp, err := planner.Physicalize(lp, alg, fakeCatalog{}, req.PushSQL)
	require.NoError(t, err)
	return &stager.Staged{Logical: lp, LogicalRa: lp.String(), Physical: pp}
}

func TestCompileClusterFragments(t *testing.T) {
	req := stager.Request{
		Query:    "A(x) :- Edges(x, 3)",
		Language: algebra.LanguageLogic,
		Backend:  algebra.BackendCluster,
	}
	staged := stage(t, req, algebra.LeftDeepTreeAlgebra{})

	prog, err := submit.Compile(req, staged)
	require.NoError(t, err)

	assert.Equal(t, req.Query, prog.RawQuery)
	assert.Equal(t, staged.LogicalRa, prog.LogicalRa)
	assert.Equal(t, "logic", prog.Language)
	assert.Nil(t, prog.Plan)
	require.Len(t, prog.Fragments, 1)

	ops := prog.Fragments[0].Operators
	require.Len(t, ops, 4) // scan, filter, project, store

	assert.Equal(t, "TableScan", ops[0]["opType"])
	assert.Equal(t, "Edges", ops[0]["relation"])
	assert.Equal(t, "Filter", ops[1]["opType"])
	assert.Equal(t, 0, ops[1]["argChild"])
	assert.Equal(t, "Apply", ops[2]["opType"])
	assert.Equal(t, 1, ops[2]["argChild"])
	assert.Equal(t, "Store", ops[3]["opType"])
	assert.Equal(t, "A", ops[3]["relation"])
	assert.Equal(t, 2, ops[3]["argChild"])
}

func TestCompileClusterJoinChildIDs(t *testing.T) {
	req := stager.Request{
		Query:    "P(x, z) :- Edges(x, y), Edges(y, z)",
		Language: algebra.LanguageLogic,
		Backend:  algebra.BackendCluster,
	}
	staged := stage(t, req, algebra.LeftDeepTreeAlgebra{})

	prog, err := submit.Compile(req, staged)
	require.NoError(t, err)
	require.Len(t, prog.Fragments, 1)

	ops := prog.Fragments[0].Operators
	require.Len(t, ops, 5) // two scans, join, project, store

	assert.Equal(t, "ShuffleHashJoin", ops[2]["opType"])
	assert.Equal(t, 0, ops[2]["argChild1"])
	assert.Equal(t, 1, ops[2]["argChild2"])
}

func TestCompileCodegenPlan(t *testing.T) {
	req := stager.Request{
		Query:    "A(x) :- Edges(x, 3)",
		Language: algebra.LanguageLogic,
		Backend:  algebra.BackendCodegenLocal,
	}
	staged := stage(t, req, algebra.CodegenLocalAlgebra{})

	prog, err := submit.Compile(req, staged)
	require.NoError(t, err)

	assert.Empty(t, prog.Fragments)
	require.NotNil(t, prog.Plan)
	assert.Equal(t, "codegen-local", prog.Plan["backend"])
	assert.Equal(t, "CodegenLocal", prog.Plan["algebra"])

	outputs, ok := prog.Plan["outputs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, outputs, 1)
	assert.Equal(t, "A", outputs[0]["output"])
}

func TestProfilingModes(t *testing.T) {
	base := stager.Request{
		Query:    "A(x) :- Edges(x, 3)",
		Language: algebra.LanguageLogic,
		Backend:  algebra.BackendCluster,
	}
	staged := stage(t, base, algebra.LeftDeepTreeAlgebra{})

	plain, err := submit.Compile(base, staged)
	require.NoError(t, err)
	assert.NotNil(t, plain.ProfilingMode)
	assert.Empty(t, plain.ProfilingMode)

	profiled := base
	profiled.Profile = true
	prog, err := submit.Compile(profiled, staged)
	require.NoError(t, err)
	assert.Equal(t, []string{"QUERY", "RESOURCE"}, prog.ProfilingMode)
}

func TestCompileUnknownBackend(t *testing.T) {
	req := stager.Request{
		Query:    "A(x) :- Edges(x, 3)",
		Language: algebra.LanguageLogic,
		Backend:  algebra.Backend("mainframe"),
	}
	staged := stage(t, req, algebra.LeftDeepTreeAlgebra{})

	_, err := submit.Compile(req, staged)
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_UNSUPPORTED, ferror.CodeOf(err))
}
