package catalog

import (
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/models/ferror"
)

// ForBackend picks the catalog for one request. The clustered engine,
// and any backend planning a multiway join, needs the cluster-aware
// catalog; a cluster reporting zero live servers is a configuration
// fault, not a per-request error. Code-generation backends without
// multiway planning get the lightweight catalog.
func ForBackend(backend algebra.Backend, multiwayJoin bool, cluster ClusterBackend, codegen CodegenBackend) (Catalog, error) {
	switch backend {
	case algebra.BackendCluster:
	case algebra.BackendCodegenLocal, algebra.BackendCodegenDist:
		if !multiwayJoin {
			return NewCodegenCatalog(codegen), nil
		}
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED, "no catalog for backend %q", backend)
	}

	cat := NewClusterCatalog(cluster)
	n, err := cat.NumServers()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ferror.New(ferror.FQ_CONFIG_FAULT, "cluster reports zero live servers")
	}
	return cat, nil
}
