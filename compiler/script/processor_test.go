package script_test

import (
	"testing"

	"github.com/frontierdb/frontier/compiler/script"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	schemas map[string]*rel.Schema
}

func (f *fakeCatalog) RelationSchema(name string) (*rel.Schema, error) {
	if s, ok := f.schemas[name]; ok {
		return s, nil
	}
	return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
}

func (f *fakeCatalog) NumServers() (int, error) {
	return 4, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{schemas: map[string]*rel.Schema{
		"Edges": {
			ColumnNames: []string{"src", "dst"},
			ColumnTypes: []string{"LONG_TYPE", "LONG_TYPE"},
		},
		"People": {
			ColumnNames: []string{"name", "age", "city"},
			ColumnTypes: []string{"STRING_TYPE", "LONG_TYPE", "STRING_TYPE"},
		},
	}}
}

func evaluate(t *testing.T, query string) (*script.Processor, error) {
	t.Helper()
	stmts, err := script.NewEngine().Parse(query)
	require.NoError(t, err)
	proc := script.NewProcessor(testCatalog())
	return proc, proc.Evaluate(stmts)
}

func TestEvaluateBuildsLogicalPlan(t *testing.T) {
	proc, err := evaluate(t, `
		r = scan(Edges);
		f = filter(r, $1 = 3);
		p = project(f, $0);
		store(p, Out);
	`)
	require.NoError(t, err)

	lp, err := proc.LogicalPlan()
	require.NoError(t, err)
	assert.Equal(t, "Out = Project($0)[Select($1 = 3)[Scan(Edges)]]", lp.String())
}

func TestEvaluateUnknownRelationIsSemantic(t *testing.T) {
	_, err := evaluate(t, `r = scan(Ghost);`)
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_SEMANTIC, ferror.CodeOf(err))
	assert.Contains(t, err.Error(), "Ghost")
}

func TestEvaluateUnknownBindingIsSemantic(t *testing.T) {
	_, err := evaluate(t, `f = filter(nope, $0 = 1);`)
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_SEMANTIC, ferror.CodeOf(err))
}

func TestEvaluateColumnOutOfRange(t *testing.T) {
	_, err := evaluate(t, `r = scan(Edges); f = filter(r, $7 = 1);`)
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_SEMANTIC, ferror.CodeOf(err))
}

func TestEvaluateWithoutStoreUsesLastAssignment(t *testing.T) {
	proc, err := evaluate(t, `r = scan(Edges); p = project(r, $1);`)
	require.NoError(t, err)

	lp, err := proc.LogicalPlan()
	require.NoError(t, err)
	require.Len(t, lp.Bindings, 1)
	assert.Equal(t, "p", lp.Bindings[0].Name)
}

func TestEvaluateSQLSelect(t *testing.T) {
	proc, err := evaluate(t, `SELECT name FROM People WHERE age = 30`)
	require.NoError(t, err)

	lp, err := proc.LogicalPlan()
	require.NoError(t, err)
	assert.Equal(t, "result = Project($0)[Select($1 = 30)[Scan(People)]]", lp.String())
}

func TestEvaluateSQLUnknownColumn(t *testing.T) {
	_, err := evaluate(t, `SELECT shoe_size FROM People`)
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_SEMANTIC, ferror.CodeOf(err))
	assert.Contains(t, err.Error(), "shoe_size")
}
