package conn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/frontierdb/frontier/pkg/config"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/sethvargo/go-retry"
)

// ClusterConn talks to the clustered relational engine's REST service.
// Safe for concurrent use.
type ClusterConn struct {
	restClient
	host string
	port int
}

func NewClusterConn(cfg *config.Cluster) *ClusterConn {
	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}
	return &ClusterConn{
		restClient: restClient{
			base: baseURL(scheme, cfg.Host, cfg.Port),
			hc:   &http.Client{},
		},
		host: cfg.Host,
		port: cfg.Port,
	}
}

// NewClusterConnURL builds a connection from a raw base URL. Used by
// tests pointing at a local stub server.
func NewClusterConnURL(rawurl string) (*ClusterConn, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	host, port := hostPortOf(u)
	return &ClusterConn{
		restClient: restClient{base: rawurl, hc: &http.Client{}},
		host:       host,
		port:       port,
	}, nil
}

func (c *ClusterConn) HostPort() (string, int) {
	return c.host, c.port
}

// Workers returns the cluster's worker roster, id to address.
func (c *ClusterConn) Workers() (map[string]string, error) {
	var workers map[string]string
	if err := c.getJSON("/workers", &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// AliveWorkers returns the ids of workers currently alive.
func (c *ClusterConn) AliveWorkers() ([]int, error) {
	var alive []int
	if err := c.getJSON("/workers/alive", &alive); err != nil {
		return nil, err
	}
	return alive, nil
}

func (c *ClusterConn) NumWorkers() (int, error) {
	workers, err := c.Workers()
	if err != nil {
		return 0, err
	}
	return len(workers), nil
}

type datasetInfo struct {
	Schema    rel.Schema `json:"schema"`
	NumTuples int64      `json:"numTuples"`
}

// DatasetSchema resolves a stored relation's schema. A missing relation
// is a semantic error, not a backend one.
func (c *ClusterConn) DatasetSchema(name string) (*rel.Schema, error) {
	resp, err := c.hc.Get(c.base + "/dataset/" + url.PathEscape(name))
	if err != nil {
		return nil, ferror.Wrap(err, ferror.FQ_CONNECTIVITY)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
	}
	var info datasetInfo
	if err := decodeResponse(resp, "/dataset/"+name, &info); err != nil {
		return nil, err
	}
	return &info.Schema, nil
}

// SubmitQuery posts a compiled program to the query-submission endpoint.
// Never retried: a failed submission surfaces to the caller as-is.
func (c *ClusterConn) SubmitQuery(program any) (*QueryStatus, error) {
	var status QueryStatus
	if err := c.postJSON("/query", program, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// QueryStatusByID polls the execution status of a submitted query.
func (c *ClusterConn) QueryStatusByID(queryID string) (map[string]any, error) {
	var status map[string]any
	if err := c.getJSON("/query/query-"+url.PathEscape(queryID), &status); err != nil {
		return nil, err
	}
	return status, nil
}

// ConnectionString describes cluster health for display. The probe gets
// a short backoff because it is cosmetic; on persistent failure it
// degrades to a placeholder instead of surfacing an error.
func (c *ClusterConn) ConnectionString() string {
	var workers map[string]string
	var alive []int

	probe := func(ctx context.Context) error {
		var err error
		if workers, err = c.Workers(); err != nil {
			return retry.RetryableError(err)
		}
		if alive, err = c.AliveWorkers(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(50*time.Millisecond))
	if err := retry.Do(context.Background(), backoff, probe); err != nil {
		return fmt.Sprintf("error connecting to %s:%d", c.host, c.port)
	}
	return fmt.Sprintf("%s:%d [%d/%d]", c.host, c.port, len(alive), len(workers))
}
