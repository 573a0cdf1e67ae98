// Package catalog binds schema lookup to a live backend connection. A
// catalog is owned by one request for its duration; the connection it
// borrows is process-wide and shared.
package catalog

import (
	"github.com/frontierdb/frontier/pkg/rel"
)

// Catalog is the schema lookup capability handed to the plan stager.
type Catalog interface {
	// RelationSchema resolves a stored relation, returning a semantic
	// error when the relation does not exist.
	RelationSchema(name string) (*rel.Schema, error)

	// NumServers reports how many servers can take part in plan
	// execution. The lightweight codegen catalog always reports one.
	NumServers() (int, error)
}

// ClusterBackend is what the cluster catalog needs from the cluster
// connection.
type ClusterBackend interface {
	DatasetSchema(name string) (*rel.Schema, error)
	NumWorkers() (int, error)
}

// CodegenBackend is what the codegen catalog needs from the codegen
// connection.
type CodegenBackend interface {
	RelationSchema(name string) (*rel.Schema, error)
}

// ClusterCatalog resolves schemas through the clustered engine and
// knows the cluster's size.
type ClusterCatalog struct {
	conn ClusterBackend
}

var _ Catalog = &ClusterCatalog{}

func NewClusterCatalog(conn ClusterBackend) *ClusterCatalog {
	return &ClusterCatalog{conn: conn}
}

func (c *ClusterCatalog) RelationSchema(name string) (*rel.Schema, error) {
	return c.conn.DatasetSchema(name)
}

func (c *ClusterCatalog) NumServers() (int, error) {
	return c.conn.NumWorkers()
}

// CodegenCatalog is the single-node catalog for the code-generation
// backends.
type CodegenCatalog struct {
	conn CodegenBackend
}

var _ Catalog = &CodegenCatalog{}

func NewCodegenCatalog(conn CodegenBackend) *CodegenCatalog {
	return &CodegenCatalog{conn: conn}
}

func (c *CodegenCatalog) RelationSchema(name string) (*rel.Schema, error) {
	return c.conn.RelationSchema(name)
}

func (c *CodegenCatalog) NumServers() (int, error) {
	return 1, nil
}
