// Package algebra fixes the closed set of source languages, execution
// backends, and target execution algebras the front end dispatches over.
package algebra

import (
	"strings"

	"github.com/frontierdb/frontier/pkg/models/ferror"
)

type Backend string

const (
	BackendCluster      Backend = "cluster"
	BackendCodegenLocal Backend = "codegen-local"
	BackendCodegenDist  Backend = "codegen-dist"
)

// ParseBackend normalizes a request-supplied backend string. An empty
// value means the clustered engine.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return BackendCluster, nil
	case BackendCluster:
		return BackendCluster, nil
	case BackendCodegenLocal:
		return BackendCodegenLocal, nil
	case BackendCodegenDist:
		return BackendCodegenDist, nil
	default:
		return "", ferror.New(ferror.FQ_UNSUPPORTED, "unknown backend %q", s)
	}
}

type Language string

const (
	LanguageLogic  Language = "logic"
	LanguageScript Language = "script"
	LanguageSQL    Language = "sql"
)

// ParseLanguage normalizes a request-supplied language string. An empty
// value means the logic language.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return LanguageLogic, nil
	case LanguageLogic:
		return LanguageLogic, nil
	case LanguageScript:
		return LanguageScript, nil
	case LanguageSQL:
		return LanguageSQL, nil
	default:
		return "", ferror.New(ferror.FQ_UNSUPPORTED, "unknown language %q", s)
	}
}

// TargetAlgebra is a strategy for realizing relational operators on one
// execution backend. Exactly one algebra is chosen per request, before
// staging begins, and is passed by reference through the pipeline.
type TargetAlgebra interface {
	Name() string

	// SQLPushdown reports whether the algebra can execute pushed-down
	// SQL subplans inside the backend's storage layer.
	SQLPushdown() bool
}

type LeftDeepTreeAlgebra struct{}

func (LeftDeepTreeAlgebra) Name() string      { return "LeftDeepTree" }
func (LeftDeepTreeAlgebra) SQLPushdown() bool { return true }

type HyperCubeAlgebra struct{}

func (HyperCubeAlgebra) Name() string      { return "HyperCube" }
func (HyperCubeAlgebra) SQLPushdown() bool { return true }

type CodegenLocalAlgebra struct{}

func (CodegenLocalAlgebra) Name() string      { return "CodegenLocal" }
func (CodegenLocalAlgebra) SQLPushdown() bool { return false }

type CodegenDistAlgebra struct{}

func (CodegenDistAlgebra) Name() string      { return "CodegenDist" }
func (CodegenDistAlgebra) SQLPushdown() bool { return false }

// Select maps (backend, multiway-join) to the target algebra. Pure table
// lookup, no side effects; the multiway flag only matters for the
// clustered engine.
func Select(backend Backend, multiwayJoin bool) (TargetAlgebra, error) {
	switch backend {
	case BackendCodegenLocal:
		return CodegenLocalAlgebra{}, nil
	case BackendCodegenDist:
		return CodegenDistAlgebra{}, nil
	case BackendCluster:
		if multiwayJoin {
			return HyperCubeAlgebra{}, nil
		}
		return LeftDeepTreeAlgebra{}, nil
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED, "no target algebra for backend %q", backend)
	}
}
