// Package stager drives a query through its plan forms: Unparsed →
// LogicalPlan → Optimized PhysicalPlan. The stager owns the shared
// grammar engine for the scripting/SQL family; logic-language requests
// get a fresh compiler each.
package stager

import (
	"github.com/frontierdb/frontier/compiler/logic"
	"github.com/frontierdb/frontier/compiler/script"
	"github.com/frontierdb/frontier/pkg/algebra"
	"github.com/frontierdb/frontier/pkg/catalog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
)

// Request carries one compilation's parameters. Immutable once built.
type Request struct {
	Query        string
	Language     algebra.Language
	Backend      algebra.Backend
	MultiwayJoin bool
	PushSQL      bool
	Profile      bool
}

type PlanType string

const (
	PlanTypeLogical  PlanType = "logical"
	PlanTypePhysical PlanType = "physical"
)

// ParsePlanType admits exactly the two defined plan stages.
func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(s) {
	case PlanTypeLogical:
		return PlanTypeLogical, nil
	case PlanTypePhysical:
		return PlanTypePhysical, nil
	default:
		return "", ferror.New(ferror.FQ_UNSUPPORTED, "unknown plan type %q", s)
	}
}

// Staged is the result of one pass through the pipeline. LogicalRa is
// the logical plan's string form, memoized here so the submit step
// never re-renders or re-parses it. Physical is nil when only the
// logical stage was requested.
type Staged struct {
	Logical   *rel.LogicalPlan
	LogicalRa string
	Physical  *rel.PhysicalPlan
}

type Stager struct {
	engine *script.SharedEngine
}

func New() *Stager {
	return &Stager{
		engine: script.NewSharedEngine(),
	}
}

// LogicalPlan stages through the first transition only.
func (s *Stager) LogicalPlan(req Request, cat catalog.Catalog) (*Staged, error) {
	return s.Stage(req, cat, nil, PlanTypeLogical)
}

// PhysicalPlan stages through both transitions. The logical plan is
// always fully built before physical construction begins.
func (s *Stager) PhysicalPlan(req Request, cat catalog.Catalog, alg algebra.TargetAlgebra) (*Staged, error) {
	return s.Stage(req, cat, alg, PlanTypePhysical)
}

func (s *Stager) Stage(req Request, cat catalog.Catalog, alg algebra.TargetAlgebra, pt PlanType) (*Staged, error) {
	switch pt {
	case PlanTypeLogical, PlanTypePhysical:
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED, "unknown plan type %q", pt)
	}

	switch req.Language {
	case algebra.LanguageLogic:
		return s.stageLogic(req, cat, alg, pt)
	case algebra.LanguageScript, algebra.LanguageSQL:
		return s.stageScript(req, cat, alg, pt)
	default:
		return nil, ferror.New(ferror.FQ_UNSUPPORTED,
			"language %q is not supported on backend %q", req.Language, req.Backend)
	}
}

func (s *Stager) stageLogic(req Request, cat catalog.Catalog, alg algebra.TargetAlgebra, pt PlanType) (*Staged, error) {
	lp, err := logic.NewCompiler().Compile(req.Query)
	if err != nil {
		return nil, err
	}
	staged := &Staged{Logical: lp, LogicalRa: lp.String()}
	if pt == PlanTypeLogical {
		return staged, nil
	}

	staged.Physical, err = logic.NewCompiler().Optimize(lp, alg, cat, req.PushSQL)
	if err != nil {
		return nil, err
	}
	return staged, nil
}

func (s *Stager) stageScript(req Request, cat catalog.Catalog, alg algebra.TargetAlgebra, pt PlanType) (*Staged, error) {
	// The engine lock covers the parse alone; evaluation below runs
	// outside it.
	stmts, err := s.engine.Parse(req.Query)
	if err != nil {
		return nil, err
	}

	proc := script.NewProcessor(cat)
	if err := proc.Evaluate(stmts); err != nil {
		return nil, err
	}

	lp, err := proc.LogicalPlan()
	if err != nil {
		return nil, err
	}
	staged := &Staged{Logical: lp, LogicalRa: lp.String()}
	if pt == PlanTypeLogical {
		return staged, nil
	}

	staged.Physical, err = proc.PhysicalPlan(alg, req.PushSQL)
	if err != nil {
		return nil, err
	}
	return staged, nil
}
