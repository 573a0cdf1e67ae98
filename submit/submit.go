package submit

import (
	"fmt"

	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/conn"
	"github.com/frontierdb/frontier/pkg/flog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
)

// ClusterService is the submission surface of the cluster connection.
type ClusterService interface {
	SubmitQuery(program any) (*conn.QueryStatus, error)
	QueryStatusByID(queryID string) (map[string]any, error)
	HostPort() (string, int)
}

// CodegenService is the submission surface of the codegen connection.
type CodegenService interface {
	SubmitQuery(program any) (*conn.QueryStatus, error)
	CheckQuery(queryID string) (map[string]any, error)
	HostPort() (string, int)
}

// Submitter routes compiled programs to their execution service and
// builds the status-polling location for accepted queries. Submissions
// are never retried here.
type Submitter struct {
	cluster ClusterService
	codegen CodegenService
}

func NewSubmitter(cluster ClusterService, codegen CodegenService) *Submitter {
	return &Submitter{cluster: cluster, codegen: codegen}
}

// Submit posts the program and returns the backend's status plus the
// polling URL for the assigned query id.
func (s *Submitter) Submit(backend algebra.Backend, prog *Program) (*conn.QueryStatus, string, error) {
	switch backend {
	case algebra.BackendCluster:
		status, err := s.cluster.SubmitQuery(prog)
		if err != nil {
			return nil, "", err
		}
		host, port := s.cluster.HostPort()
		url := fmt.Sprintf("http://%s:%d/execute?query_id=%d", host, port, status.QueryID)
		flog.Zero.Info().Int64("query_id", status.QueryID).Str("backend", string(backend)).
			Msg("query submitted")
		return status, url, nil

	case algebra.BackendCodegenLocal, algebra.BackendCodegenDist:
		status, err := s.codegen.SubmitQuery(prog)
		if err != nil {
			return nil, "", err
		}
		host, port := s.codegen.HostPort()
		url := fmt.Sprintf("http://%s:%d/query?qid=%d", host, port, status.QueryID)
		flog.Zero.Info().Int64("query_id", status.QueryID).Str("backend", string(backend)).
			Msg("query submitted")
		return status, url, nil

	default:
		return nil, "", ferror.New(ferror.FQ_UNSUPPORTED, "cannot submit to backend %q", backend)
	}
}

// Status polls the current execution status of a submitted query.
func (s *Submitter) Status(backend algebra.Backend, queryID string) (map[string]any, error) {
	switch backend {
	case algebra.BackendCluster:
		return s.cluster.QueryStatusByID(queryID)
	case algebra.BackendCodegenLocal, algebra.BackendCodegenDist:
		return s.codegen.CheckQuery(queryID)
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED, "cannot poll backend %q", backend)
	}
}
