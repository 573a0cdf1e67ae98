package frontend_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/frontierdb/frontier/frontend"
	"github.com/frontierdb/frontier/pkg/conn"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	workers   int
	reachable bool

	submitted any
}

func (f *fakeCluster) DatasetSchema(name string) (*rel.Schema, error) {
	if !f.reachable {
		return nil, ferror.New(ferror.FQ_CONNECTIVITY, "connection refused")
	}
	if name != "Edges" {
		return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
	}
	return &rel.Schema{
		ColumnNames: []string{"src", "dst"},
		ColumnTypes: []string{"LONG_TYPE", "LONG_TYPE"},
	}, nil
}

func (f *fakeCluster) NumWorkers() (int, error) {
	if !f.reachable {
		return 0, ferror.New(ferror.FQ_CONNECTIVITY, "connection refused")
	}
	return f.workers, nil
}

func (f *fakeCluster) SubmitQuery(program any) (*conn.QueryStatus, error) {
	f.submitted = program
	return &conn.QueryStatus{QueryID: 17, Status: "ACCEPTED"}, nil
}

func (f *fakeCluster) QueryStatusByID(queryID string) (map[string]any, error) {
	return map[string]any{"queryId": queryID, "status": "SUCCESS"}, nil
}

func (f *fakeCluster) HostPort() (string, int) { return "engine.local", 1776 }

func (f *fakeCluster) ConnectionString() string { return "engine.local:1776 [4/4]" }

type fakeCodegen struct{}

func (fakeCodegen) RelationSchema(name string) (*rel.Schema, error) {
	if name != "Edges" {
		return nil, ferror.New(ferror.FQ_SEMANTIC, "relation %s not found", name)
	}
	return &rel.Schema{
		ColumnNames: []string{"src", "dst"},
		ColumnTypes: []string{"LONG_TYPE", "LONG_TYPE"},
	}, nil
}

func (fakeCodegen) SubmitQuery(program any) (*conn.QueryStatus, error) {
	return &conn.QueryStatus{QueryID: 5, Status: "ACCEPTED"}, nil
}

func (fakeCodegen) CheckQuery(queryID string) (map[string]any, error) {
	return map[string]any{"status": "SUCCESS"}, nil
}

func (fakeCodegen) HostPort() (string, int) { return "cg.local", 1337 }

func newTestApp() (*frontend.App, *fakeCluster) {
	cluster := &fakeCluster{workers: 4, reachable: true}
	return frontend.NewApp(cluster, fakeCodegen{}, "v0.3.0", "main"), cluster
}

func post(t *testing.T, app *frontend.App, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestPlanEndpoint(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/plan", url.Values{
		"query":    {"A(x) :- Edges(x, 3)"},
		"language": {"logic"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var plan map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
}

func TestPlanSyntaxErrorIs400(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/plan", url.Values{
		"query":    {"A(x :- Edges(x, y)"},
		"language": {"logic"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SyntaxError")
}

func TestOptimizeUnknownRelationIs400(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/optimize", url.Values{
		"query":    {"A(x) :- Ghost(x)"},
		"language": {"logic"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ghost")
}

func TestCompileUnreachableClusterIs503(t *testing.T) {
	app, cluster := newTestApp()
	cluster.reachable = false

	rec := post(t, app, "/compile", url.Values{
		"query":    {"A(x) :- Edges(x, 3)"},
		"language": {"logic"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompileProfiling(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/compile", url.Values{
		"query":    {"A(x) :- Edges(x, 3)"},
		"language": {"logic"},
		"profile":  {"true"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var prog struct {
		ProfilingMode []string `json:"profilingMode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prog))
	assert.Equal(t, []string{"QUERY", "RESOURCE"}, prog.ProfilingMode)
}

func TestExecuteReturnsCreatedWithLocation(t *testing.T) {
	app, cluster := newTestApp()

	rec := post(t, app, "/execute", url.Values{
		"query":    {"A(x) :- Edges(x, 3)"},
		"language": {"logic"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "http://engine.local:1776/execute?query_id=17",
		rec.Header().Get("Content-Location"))
	assert.NotNil(t, cluster.submitted)

	var status conn.QueryStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, int64(17), status.QueryID)
}

func TestExecuteStatusMissingIDIs400(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/execute", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query_id")
}

func TestExecuteStatusByID(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/execute?query_id=17", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "17", status["queryId"])
}

func TestDotRendersBothStages(t *testing.T) {
	app, _ := newTestApp()

	for pt, header := range map[string]string{
		"logical":  "digraph logical_plan {",
		"physical": "digraph physical_plan {",
	} {
		rec := post(t, app, "/dot", url.Values{
			"query":    {"A(x) :- Edges(x, 3)"},
			"language": {"logic"},
			"type":     {pt},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), header, pt)
	}
}

func TestDotUnknownTypeIs400(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/dot", url.Values{
		"query":    {"A(x) :- Edges(x, 3)"},
		"language": {"logic"},
		"type":     {"fragmented"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "v0.3.0", body["version"])
	assert.Equal(t, "main", body["branch"])
	assert.Equal(t, "engine.local:1776 [4/4]", body["connectionString"])
}

func TestUnknownBackendIs400(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/plan", url.Values{
		"query":   {"A(x) :- Edges(x, 3)"},
		"backend": {"mainframe"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadBoolParamIs400(t *testing.T) {
	app, _ := newTestApp()

	rec := post(t, app, "/plan", url.Values{
		"query":         {"A(x) :- Edges(x, 3)"},
		"multiway_join": {"maybe"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
