// Package frontend is the HTTP request boundary: it decodes request
// parameters, drives the compilation pipeline, and classifies every
// failure into a response status before it reaches the client.
package frontend

import (
	"context"
	"errors"
	"net/http"

	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/stager"
	"github.com/frontierdb/frontier/submit"
	"github.com/go-chi/chi/v5"
)

// ClusterConn is everything the frontend needs from the clustered
// engine's connection.
type ClusterConn interface {
	catalog.ClusterBackend
	submit.ClusterService
	ConnectionString() string
}

// CodegenConn is everything the frontend needs from the codegen
// backends' connection.
type CodegenConn interface {
	catalog.CodegenBackend
	submit.CodegenService
}

type App struct {
	cluster ClusterConn
	codegen CodegenConn

	stager    *stager.Stager
	submitter *submit.Submitter

	version string
	branch  string
}

func NewApp(cluster ClusterConn, codegen CodegenConn, version, branch string) *App {
	return &App{
		cluster:   cluster,
		codegen:   codegen,
		stager:    stager.New(),
		submitter: submit.NewSubmitter(cluster, codegen),
		version:   version,
		branch:    branch,
	}
}

// Router wires the request boundary. Compile-family endpoints accept
// both GET and POST because programs can be long.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(openCORS)

	r.Get("/", a.status)

	r.Get("/plan", a.plan)
	r.Post("/plan", a.plan)
	r.Get("/optimize", a.optimize)
	r.Post("/optimize", a.optimize)
	r.Get("/compile", a.compile)
	r.Post("/compile", a.compile)
	r.Get("/dot", a.dot)
	r.Post("/dot", a.dot)

	r.Post("/execute", a.execute)
	r.Get("/execute", a.executeStatus)

	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a.Router()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
