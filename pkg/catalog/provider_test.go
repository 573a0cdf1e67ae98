package catalog_test

import (
	"testing"

	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClusterBackend struct {
	workers int
	schemas map[string]*rel.Schema
}

func (f *fakeClusterBackend) DatasetSchema(name string) (*rel.Schema, error) {
	if s, ok := f.schemas[name]; ok {
		return s, nil
	}
	return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
}

func (f *fakeClusterBackend) NumWorkers() (int, error) {
	return f.workers, nil
}

type fakeCodegenBackend struct {
	schemas map[string]*rel.Schema
}

func (f *fakeCodegenBackend) RelationSchema(name string) (*rel.Schema, error) {
	if s, ok := f.schemas[name]; ok {
		return s, nil
	}
	return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
}

func TestForBackendSelection(t *testing.T) {
	assert := assert.New(t)
	cluster := &fakeClusterBackend{workers: 4}
	codegen := &fakeCodegenBackend{}

	type tcase struct {
		backend  algebra.Backend
		multiway bool
		cluster  bool
	}

	for _, tt := range []tcase{
		{algebra.BackendCluster, false, true},
		{algebra.BackendCluster, true, true},
		{algebra.BackendCodegenLocal, false, false},
		{algebra.BackendCodegenDist, false, false},
		{algebra.BackendCodegenLocal, true, true},
		{algebra.BackendCodegenDist, true, true},
	} {
		cat, err := catalog.ForBackend(tt.backend, tt.multiway, cluster, codegen)
		require.NoError(t, err, "backend %s multiway %v", tt.backend, tt.multiway)
		_, isCluster := cat.(*catalog.ClusterCatalog)
		assert.Equal(tt.cluster, isCluster, "backend %s multiway %v", tt.backend, tt.multiway)
	}
}

func TestForBackendZeroServersIsConfigFault(t *testing.T) {
	cluster := &fakeClusterBackend{workers: 0}
	_, err := catalog.ForBackend(algebra.BackendCluster, false, cluster, &fakeCodegenBackend{})
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_CONFIG_FAULT, ferror.CodeOf(err))
}

func TestForBackendUnknown(t *testing.T) {
	_, err := catalog.ForBackend(algebra.Backend("spark"), false, &fakeClusterBackend{workers: 1}, &fakeCodegenBackend{})
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_UNSUPPORTED, ferror.CodeOf(err))
}

func TestCodegenCatalogIsSingleNode(t *testing.T) {
	cat := catalog.NewCodegenCatalog(&fakeCodegenBackend{})
	n, err := cat.NumServers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
