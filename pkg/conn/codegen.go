package conn

import (
	"net/http"
	"net/url"

	"github.com/frontierdb/frontier/pkg/config"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
)

// CodegenConn talks to a code-generation backend's REST service. One
// connection serves both the single-node and the distributed variant;
// the compiled program says which runtime to use.
type CodegenConn struct {
	restClient
	host string
	port int
}

func NewCodegenConn(cfg *config.Codegen) *CodegenConn {
	return &CodegenConn{
		restClient: restClient{
			base: baseURL("http", cfg.Host, cfg.Port),
			hc:   &http.Client{},
		},
		host: cfg.Host,
		port: cfg.Port,
	}
}

func NewCodegenConnURL(rawurl string) (*CodegenConn, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	host, port := hostPortOf(u)
	return &CodegenConn{
		restClient: restClient{base: rawurl, hc: &http.Client{}},
		host:       host,
		port:       port,
	}, nil
}

func (c *CodegenConn) HostPort() (string, int) {
	return c.host, c.port
}

// RelationSchema resolves a relation against the codegen catalog
// service. A missing relation is a semantic error.
func (c *CodegenConn) RelationSchema(name string) (*rel.Schema, error) {
	resp, err := c.hc.Get(c.base + "/catalog/" + url.PathEscape(name))
	if err != nil {
		return nil, ferror.Wrap(err, ferror.FQ_CONNECTIVITY)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
	}
	var schema rel.Schema
	if err := decodeResponse(resp, "/catalog/"+name, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// SubmitQuery posts a compiled program for execution. Never retried.
func (c *CodegenConn) SubmitQuery(program any) (*QueryStatus, error) {
	var status QueryStatus
	if err := c.postJSON("/query", program, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckQuery polls the execution status of a submitted query.
func (c *CodegenConn) CheckQuery(queryID string) (map[string]any, error) {
	var status map[string]any
	if err := c.getJSON("/query?qid="+url.QueryEscape(queryID), &status); err != nil {
		return nil, err
	}
	return status, nil
}
