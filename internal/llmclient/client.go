package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/josephgoksu/promptforge/internal/errors"
	"github.com/josephgoksu/promptforge/internal/quality"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

// Options configures one Generate call (spec.md §4.1, §5).
type Options struct {
	Model         string
	FallbackModel string
	TimeoutMs     int
	Temperature   float64
	// MaxAttempts bounds the per-model attempt count, including the one
	// repair retry. Clamped to 2 if unset or larger (spec.md §4.1: "one
	// repair retry maximum").
	MaxAttempts int
	// EnableAutoRepair gates the single repair retry. The zero value
	// disables it; config.Defaults() turns it on.
	EnableAutoRepair bool
	QualityConfig    quality.Config
}

func (o Options) maxAttempts() int {
	if o.MaxAttempts <= 0 || o.MaxAttempts > 2 {
		return 2
	}
	return o.MaxAttempts
}

// Generate issues system/user against transport, extracts and validates a
// types.ImprovementResult, retries once with a repair prompt on
// extraction/schema/quality failure, and — if the resulting error kind is
// fallback-worthy and opts.FallbackModel is set — reissues the whole
// exchange fresh against the fallback model. The returned *errors.Error is
// nil on success.
func Generate(ctx context.Context, transport llm.Transport, system, user string, opts Options) (types.ImprovementResult, *errors.Error) {
	start := time.Now()

	result, attempt, err := attemptWithRepair(ctx, transport, system, user, opts, opts.Model)
	if err == nil {
		result.Meta.Backend = opts.Model
		result.Meta.Attempt = attempt
		result.Meta.LatencyMs = time.Since(start).Milliseconds()
		return result, nil
	}

	if !errors.IsFallbackWorthy(err.Kind) || strings.TrimSpace(opts.FallbackModel) == "" {
		err.Meta.Attempt = attempt
		err.Meta.LatencyMs = time.Since(start).Milliseconds()
		return types.ImprovementResult{}, err
	}

	fbResult, fbAttempt, fbErr := attemptWithRepair(ctx, transport, system, user, opts, opts.FallbackModel)
	if fbErr != nil {
		fbErr.Meta.Attempt = fbAttempt
		fbErr.Meta.LatencyMs = time.Since(start).Milliseconds()
		return types.ImprovementResult{}, fbErr
	}
	fbResult.Meta.Backend = opts.FallbackModel
	fbResult.Meta.Attempt = fbAttempt
	fbResult.Meta.LatencyMs = time.Since(start).Milliseconds()
	return fbResult, nil
}

// attemptWithRepair runs one runOnce call against model, and — on a
// extraction/schema/quality-gate failure with EnableAutoRepair set —
// retries exactly once more with a repair prompt built from the first
// failure, against the *same* model and the caller's remaining deadline.
func attemptWithRepair(ctx context.Context, transport llm.Transport, system, user string, opts Options, model string) (types.ImprovementResult, int, *errors.Error) {
	result, rawBody, method, verr, err := runOnce(ctx, transport, system, user, opts, model)
	if err == nil {
		result.Meta.UsedExtraction = method != MethodStrictParse
		result.Meta.ExtractionMethod = string(method)
		return result, 1, nil
	}

	repairable := err.Kind == errors.KindNonJSONOutput || err.Kind == errors.KindSchema || err.Kind == errors.KindQualityGate
	if !repairable || !opts.EnableAutoRepair || opts.maxAttempts() < 2 {
		return types.ImprovementResult{}, 1, err
	}

	repairSystem, repairUser := buildRepairPrompt(system, user, rawBody, verr, err)
	result2, _, method2, _, err2 := runOnce(ctx, transport, repairSystem, repairUser, opts, model)
	if err2 != nil {
		err2.Meta.Attempt = 2
		err2.Meta.UsedRepair = true
		return types.ImprovementResult{}, 2, err2
	}
	result2.Meta.UsedRepair = true
	result2.Meta.UsedExtraction = method2 != MethodStrictParse
	result2.Meta.ExtractionMethod = string(method2)
	return result2, 2, nil
}

// runOnce issues one transport call, extracts JSON, validates the schema
// shape, sanitizes the decoded result, and runs the quality gate. The raw
// transport body is returned alongside so a repair prompt can quote the
// invalid output verbatim.
func runOnce(ctx context.Context, transport llm.Transport, system, user string, opts Options, model string) (types.ImprovementResult, string, ExtractionMethod, *quality.Violation, *errors.Error) {
	body, err := transport.Chat(ctx, llm.ChatRequest{
		System:      system,
		User:        user,
		Model:       model,
		Temperature: opts.Temperature,
		TimeoutMs:   opts.TimeoutMs,
	})
	if err != nil {
		return types.ImprovementResult{}, "", "", nil, mapTransportErr(err)
	}

	result, method, extractErr := ExtractJSON[types.ImprovementResult](body)
	if extractErr != nil {
		return types.ImprovementResult{}, body, "", nil, errors.New(errors.KindNonJSONOutput, "model output did not contain a parseable JSON object")
	}

	if strings.TrimSpace(result.ImprovedPrompt) == "" {
		return types.ImprovementResult{}, body, method, nil, errors.New(errors.KindSchema, "improved_prompt field is missing or empty")
	}

	cfg := cfgOrDefault(opts.QualityConfig)
	result.ClarifyingQuestions = quality.EnforceBounds(result.ClarifyingQuestions, cfg.MaxQuestions)
	result.Assumptions = quality.EnforceBounds(result.Assumptions, cfg.MaxAssumptions)
	result.Confidence = quality.ClampConfidence(result.Confidence)

	qr := quality.Validate(result.ImprovedPrompt, result.Confidence, result.ClarifyingQuestions, result.Assumptions, cfg)
	if qr.Violation != nil {
		return result, body, method, qr.Violation, errors.New(errors.KindQualityGate, fmt.Sprintf("quality gate rejected output: %s", qr.Violation.Rule))
	}
	result.Warnings = qr.SoftWarnings
	return result, body, method, nil, nil
}

func cfgOrDefault(c quality.Config) quality.Config {
	if c.MaxQuestions == 0 && c.MaxAssumptions == 0 {
		d := quality.DefaultConfig()
		c.MaxQuestions = d.MaxQuestions
		c.MaxAssumptions = d.MaxAssumptions
	}
	return c
}

// buildRepairPrompt wraps quality.BuildRepairPrompt, falling back to a
// generic "return valid JSON" instruction when the failure never reached
// the quality gate (e.g. extraction or schema failures have no
// quality.Violation to quote).
func buildRepairPrompt(system, originalUser, rawOutput string, v *quality.Violation, cause *errors.Error) (string, string) {
	if v != nil {
		return quality.BuildRepairPrompt(system, originalUser, rawOutput, *v)
	}
	repairSystem := system + "\n\nYour previous response could not be parsed as the required JSON object. Respond with ONLY the JSON object, no prose, no markdown fences."
	repairUser := fmt.Sprintf("Original request:\n%s\n\nYour previous response was invalid (%s). Return only the corrected JSON object.", originalUser, cause.Message)
	return repairSystem, repairUser
}

// mapTransportErr classifies a *llm.TransportError into the internal
// error-kind taxonomy (spec.md §4.1, §7).
func mapTransportErr(err error) *errors.Error {
	te, ok := err.(*llm.TransportError)
	if !ok {
		return errors.Wrap(errors.KindInternal, "transport call failed", err)
	}
	switch te.Kind {
	case llm.ErrTimeout:
		return errors.Wrap(errors.KindTimeout, "llm call timed out", err)
	case llm.ErrConnection:
		return errors.Wrap(errors.KindConnection, "llm transport connection failed", err)
	case llm.ErrRateLimited:
		return errors.Wrap(errors.KindRateLimited, "llm call rate limited", err)
	case llm.ErrModelNotFound:
		return errors.Wrap(errors.KindModelNotFound, "llm model not found", err)
	case llm.ErrCancelled:
		return errors.Wrap(errors.KindCancelled, "llm call cancelled", err)
	case llm.ErrHTTPStatus:
		if te.StatusCode == 404 {
			return errors.Wrap(errors.KindModelNotFound, "llm model not found", err)
		}
		if te.StatusCode == 401 {
			return errors.Wrap(errors.KindUnauthorized, "llm call unauthorized", err)
		}
		return errors.Wrap(errors.KindInternal, "llm call failed with unexpected status", err)
	default:
		return errors.Wrap(errors.KindInternal, "llm call failed", err)
	}
}
