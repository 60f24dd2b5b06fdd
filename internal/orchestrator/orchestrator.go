// Package orchestrator wires the pipeline stages of spec.md §2 into a
// single entry point: classify → complexity → KNN retrieval → prompt
// assembly → intent-routed optimization → quality validation → result
// cache → history, with per-request deadline propagation (spec.md §5).
//
// Grounded on internal/app/plan.go's overall app-wiring shape (factories
// injected as constructor arguments, every stage behind a small port).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/josephgoksu/promptforge/internal/assembler"
	"github.com/josephgoksu/promptforge/internal/cache"
	"github.com/josephgoksu/promptforge/internal/classify"
	"github.com/josephgoksu/promptforge/internal/complexity"
	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/internal/history"
	"github.com/josephgoksu/promptforge/internal/knn"
	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/internal/optimize"
	"github.com/josephgoksu/promptforge/internal/quality"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// Orchestrator ties every pipeline stage together behind one Improve call.
type Orchestrator struct {
	Transport llm.Transport // nil means "no LLM configured", degrades to Identity
	Catalog   *knn.Provider
	Cache     *cache.ResultCache
	History   *history.Store // nil disables history (best-effort only anyway)
	BaseOpts  llmclient.Options

	// QualitySource, when set, is consulted once per request for the
	// current bannedSnippets/metaLineStarters instead of the static
	// BaseOpts.QualityConfig (spec.md §6's hot-reloadable closed sets).
	// Wired from a *config.Watcher.Snapshot in cmd/wiring.go; nil means
	// BaseOpts.QualityConfig never changes after New.
	QualitySource func() quality.Config
}

// New builds an Orchestrator. history may be nil to disable persistence.
func New(transport llm.Transport, catalog *knn.Provider, resultCache *cache.ResultCache, historyStore *history.Store, baseOpts llmclient.Options) *Orchestrator {
	return &Orchestrator{
		Transport: transport,
		Catalog:   catalog,
		Cache:     resultCache,
		History:   historyStore,
		BaseOpts:  baseOpts,
	}
}

// Improve runs the full pipeline for req under ctx, honoring req.TimeoutMs
// as the per-request deadline (spec.md §5). History is written best-effort
// and never fails the call.
func (o *Orchestrator) Improve(ctx context.Context, req types.ImproveRequest) (types.ImprovementResult, *errors.Error) {
	normalized := req.Normalize()
	if len(normalized.Idea) < types.MinIdeaLength {
		return types.ImprovementResult{}, errors.New(errors.KindInput, fmt.Sprintf("idea must be at least %d characters after trimming", types.MinIdeaLength))
	}

	deadlineMs := normalized.TimeoutMs
	if deadlineMs <= 0 {
		deadlineMs = o.BaseOpts.TimeoutMs
	}
	if deadlineMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(deadlineMs)*time.Millisecond)
		defer cancel()
	}

	analyzed := o.analyze(normalized)
	key := cache.Key(normalized)

	result, cerr := o.Cache.GetOrCompute(ctx, key, func(ctx context.Context) (types.ImprovementResult, *errors.Error) {
		return o.compute(ctx, analyzed)
	})
	if cerr != nil {
		return types.ImprovementResult{}, cerr
	}

	o.recordHistory(normalized, result)
	return result, nil
}

// analyze derives intent and complexity and combines their confidences
// into a single analysis-confidence score (spec.md §3: "AnalyzedRequest
// ... + analysis confidence"). Decided as the mean of the two signals
// since both the intent classifier and the complexity analyzer speak to
// how well-understood the request is.
// Analyze exposes the classify+complexity analysis step standalone, for
// callers (e.g. the wizard entry point) that need intent/complexity/
// confidence before deciding whether to engage the wizard at all.
func (o *Orchestrator) Analyze(req types.ImproveRequest) types.AnalyzedRequest {
	return o.analyze(req.Normalize())
}

func (o *Orchestrator) analyze(req types.ImproveRequest) types.AnalyzedRequest {
	cls := classify.Classify(req.Idea)
	cplx := complexity.Analyze(req.Idea)
	return types.AnalyzedRequest{
		ImproveRequest:     req,
		Intent:             cls.Intent,
		Complexity:         cplx.Level,
		AnalysisConfidence: (cls.Confidence + cplx.Confidence) / 2,
	}
}

// compute runs the uncached path: retrieval, assembly, and intent-routed
// optimization (spec.md §2's control-flow diagram).
func (o *Orchestrator) compute(ctx context.Context, req types.AnalyzedRequest) (types.ImprovementResult, *errors.Error) {
	var examples []types.FewShotExample
	if o.Catalog != nil {
		// k=0 lets the provider pick its own complexity-scaled default
		// (internal/knn/provider.go's defaultK); REFACTOR requires examples
		// with a known-good expected output (spec.md §4.4/§8).
		examples = o.Catalog.FindExamples(req.Idea, req.Intent, req.Complexity, 0, req.Intent == types.IntentRefactor)
	}

	assembled := assembler.Assemble(req, examples)

	if o.Transport == nil {
		return optimize.Identity(req, assembled.User), nil
	}

	opts := o.requestOpts(req)
	optimizer := optimize.Select(req.Intent)
	return optimizer.Optimize(ctx, o.Transport, assembled.System, assembled.User, req, examples, opts)
}

// requestOpts overlays per-request model/fallback/timeout overrides onto
// the orchestrator's base llmclient.Options.
func (o *Orchestrator) requestOpts(req types.AnalyzedRequest) llmclient.Options {
	opts := o.BaseOpts
	if o.QualitySource != nil {
		opts.QualityConfig = o.QualitySource()
	}
	if req.Model != "" {
		opts.Model = req.Model
	}
	if req.FallbackModel != "" {
		opts.FallbackModel = req.FallbackModel
	}
	if req.TimeoutMs > 0 {
		opts.TimeoutMs = req.TimeoutMs
	}
	return opts
}

// recordHistory persists result best-effort: failures are logged, never
// surfaced to the caller (spec.md §4.10, §5: "History writes are not
// ordered with respect to the pipeline and may be dropped on failure
// without failing the request").
func (o *Orchestrator) recordHistory(req types.ImproveRequest, result types.ImprovementResult) {
	if o.History == nil {
		return
	}
	entry := types.HistoryEntry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().Unix(),
		Prompt:      result.ImprovedPrompt,
		Confidence:  &result.Confidence,
		Questions:   result.ClarifyingQuestions,
		Assumptions: result.Assumptions,
		Source:      types.EngineTag(result.Meta.Backend),
		InputLength: len(req.Idea),
		Preset:      req.Preset,
	}
	if err := o.History.Save(entry); err != nil {
		slog.Warn("orchestrator: failed to persist history entry", "error", err)
	}
}
