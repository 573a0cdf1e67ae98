package frontend

import (
	"net/http"

	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
	"github.com/frontierdb/frontier/stager"
	"github.com/frontierdb/frontier/submit"
)

func (a *App) parseRequest(r *http.Request) (stager.Request, error) {
	lang, err := algebra.ParseLanguage(r.FormValue("language"))
	if err != nil {
		return stager.Request{}, err
	}
	backend, err := algebra.ParseBackend(r.FormValue("backend"))
	if err != nil {
		return stager.Request{}, err
	}
	multiway, err := boolParam(r, "multiway_join", false)
	if err != nil {
		return stager.Request{}, err
	}
	pushSQL, err := boolParam(r, "push_sql", false)
	if err != nil {
		return stager.Request{}, err
	}
	profile, err := boolParam(r, "profile", false)
	if err != nil {
		return stager.Request{}, err
	}

	return stager.Request{
		Query:        r.FormValue("query"),
		Language:     lang,
		Backend:      backend,
		MultiwayJoin: multiway,
		PushSQL:      pushSQL,
		Profile:      profile,
	}, nil
}

func (a *App) catalogFor(req stager.Request) (catalog.Catalog, error) {
	return catalog.ForBackend(req.Backend, req.MultiwayJoin, a.cluster, a.codegen)
}

// stagePhysical runs the full pipeline for one request: catalog and
// algebra selection, then both staging transitions.
func (a *App) stagePhysical(req stager.Request) (*stager.Staged, error) {
	cat, err := a.catalogFor(req)
	if err != nil {
		return nil, err
	}
	alg, err := algebra.Select(req.Backend, req.MultiwayJoin)
	if err != nil {
		return nil, err
	}
	return a.stager.PhysicalPlan(req, cat, alg)
}

func (a *App) plan(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseRequest(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	cat, err := a.catalogFor(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	staged, err := a.stager.LogicalPlan(req, cat)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staged.Logical)
}

func (a *App) optimize(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseRequest(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	staged, err := a.stagePhysical(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staged.Physical)
}

func (a *App) compile(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseRequest(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	staged, err := a.stagePhysical(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	prog, err := submit.Compile(req, staged)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (a *App) execute(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseRequest(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	staged, err := a.stagePhysical(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	prog, err := submit.Compile(req, staged)
	if err != nil {
		writeErr(w, err)
		return
	}
	status, pollURL, err := a.submitter.Submit(req.Backend, prog)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Location", pollURL)
	writeJSON(w, http.StatusCreated, status)
}

func (a *App) executeStatus(w http.ResponseWriter, r *http.Request) {
	queryID := r.FormValue("query_id")
	if queryID == "" {
		queryID = r.FormValue("queryId")
	}
	if queryID == "" {
		writeErr(w, ferror.New(ferror.FQ_SEMANTIC, "missing query_id"))
		return
	}
	backend, err := algebra.ParseBackend(r.FormValue("backend"))
	if err != nil {
		writeErr(w, err)
		return
	}
	status, err := a.submitter.Status(backend, queryID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *App) dot(w http.ResponseWriter, r *http.Request) {
	req, err := a.parseRequest(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	pt, err := stager.ParsePlanType(r.FormValue("type"))
	if err != nil {
		writeErr(w, err)
		return
	}

	var rendered string
	switch pt {
	case stager.PlanTypeLogical:
		cat, err := a.catalogFor(req)
		if err != nil {
			writeErr(w, err)
			return
		}
		staged, err := a.stager.LogicalPlan(req, cat)
		if err != nil {
			writeErr(w, err)
			return
		}
		rendered = rel.DotLogical(staged.Logical)
	case stager.PlanTypePhysical:
		staged, err := a.stagePhysical(req)
		if err != nil {
			writeErr(w, err)
			return
		}
		rendered = rel.DotPhysical(staged.Physical)
	}

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(rendered))
}

// status reports version metadata and cluster health. The health probe
// degrades to a placeholder string instead of failing the endpoint.
func (a *App) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":          a.version,
		"branch":           a.branch,
		"connectionString": a.cluster.ConnectionString(),
	})
}
