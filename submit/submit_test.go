package submit_test

import (
	"testing"

	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/conn"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	host string
	port int

	submitted any
	status    *conn.QueryStatus
	polled    string
}

func (f *fakeService) SubmitQuery(program any) (*conn.QueryStatus, error) {
	f.submitted = program
	return f.status, nil
}

func (f *fakeService) QueryStatusByID(queryID string) (map[string]any, error) {
	f.polled = queryID
	return map[string]any{"status": "RUNNING"}, nil
}

func (f *fakeService) CheckQuery(queryID string) (map[string]any, error) {
	f.polled = queryID
	return map[string]any{"status": "RUNNING"}, nil
}

func (f *fakeService) HostPort() (string, int) { return f.host, f.port }

func TestSubmitClusterPollURL(t *testing.T) {
	cluster := &fakeService{host: "engine.local", port: 1776,
		status: &conn.QueryStatus{QueryID: 42, Status: "ACCEPTED"}}
	codegen := &fakeService{host: "cg.local", port: 1337}
	sub := submit.NewSubmitter(cluster, codegen)

	prog := &submit.Program{RawQuery: "A(x) :- Edges(x, 3)"}
	status, url, err := sub.Submit(algebra.BackendCluster, prog)
	require.NoError(t, err)

	assert.Equal(t, int64(42), status.QueryID)
	assert.Equal(t, "http://engine.local:1776/execute?query_id=42", url)
	assert.Same(t, prog, cluster.submitted)
	assert.Nil(t, codegen.submitted)
}

func TestSubmitCodegenPollURL(t *testing.T) {
	cluster := &fakeService{host: "engine.local", port: 1776}
	codegen := &fakeService{host: "cg.local", port: 1337,
		status: &conn.QueryStatus{QueryID: 7, Status: "ACCEPTED"}}
	sub := submit.NewSubmitter(cluster, codegen)

	for _, backend := range []algebra.Backend{
		algebra.BackendCodegenLocal,
		algebra.BackendCodegenDist,
	} {
		codegen.submitted = nil
		_, url, err := sub.Submit(backend, &submit.Program{})
		require.NoError(t, err, backend)
		assert.Equal(t, "http://cg.local:1337/query?qid=7", url)
		assert.NotNil(t, codegen.submitted)
	}
	assert.Nil(t, cluster.submitted)
}

func TestSubmitUnknownBackend(t *testing.T) {
	sub := submit.NewSubmitter(&fakeService{}, &fakeService{})

	_, _, err := sub.Submit(algebra.Backend("mainframe"), &submit.Program{})
	require.Error(t, err)
	assert.Equal(t, ferror.FQ_UNSUPPORTED, ferror.CodeOf(err))
}

func TestStatusRoutesByBackend(t *testing.T) {
	cluster := &fakeService{}
	codegen := &fakeService{}
	sub := submit.NewSubmitter(cluster, codegen)

	_, err := sub.Status(algebra.BackendCluster, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", cluster.polled)
	assert.Empty(t, codegen.polled)

	_, err = sub.Status(algebra.BackendCodegenDist, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", codegen.polled)
}
