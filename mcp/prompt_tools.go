/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package mcp

// MCP tool surface for the prompt-improvement pipeline: improve_prompt
// runs the pipeline once, wizard_turn drives the multi-turn ambiguity
// resolver. Grounded on core_tools.go's RegisterCoreTools registration
// idiom and tools_basic.go's ToolHandlerFor[Params, Result] handler shape.

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/josephgoksu/promptforge/internal/orchestrator"
	"github.com/josephgoksu/promptforge/internal/wizard"
	"github.com/josephgoksu/promptforge/types"
)

// mcpError formats a tool-level failure as a plain error; the MCP SDK
// surfaces it to the caller as a failed tool call.
func mcpError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

// ImprovePromptParams is the improve_prompt tool's input.
type ImprovePromptParams struct {
	Idea          string `json:"idea"`
	Context       string `json:"context,omitempty"`
	Preset        string `json:"preset,omitempty"`
	Mode          string `json:"mode,omitempty"`
	TimeoutMs     int    `json:"timeout_ms,omitempty"`
	Model         string `json:"model,omitempty"`
	FallbackModel string `json:"fallback_model,omitempty"`
}

// WizardTurnParams is the wizard_turn tool's input. An empty SessionID
// starts a new session from OriginalInput; a non-empty SessionID submits
// Text as the next user turn in an existing session.
type WizardTurnParams struct {
	SessionID     string `json:"session_id,omitempty"`
	OriginalInput string `json:"original_input,omitempty"`
	Text          string `json:"text,omitempty"`
	Preset        string `json:"preset,omitempty"`
	Mode          string `json:"mode,omitempty"`
	MaxTurns      int    `json:"max_turns,omitempty"`
}

// RegisterPromptTools registers improve_prompt and wizard_turn on server,
// backed by engine and sessions.
func RegisterPromptTools(server *mcpsdk.Server, engine *orchestrator.Orchestrator, sessions *wizard.Manager) error {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "improve_prompt",
		Description: "Turn a rough natural-language idea into a structured, higher-quality prompt with clarifying questions, assumptions, and a confidence score.",
	}, improvePromptHandler(engine))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "wizard_turn",
		Description: "Advance the multi-turn ambiguity-resolution wizard: start a session with original_input, or continue one with session_id + text.",
	}, wizardTurnHandler(engine, sessions))

	return nil
}

func improvePromptHandler(engine *orchestrator.Orchestrator) mcpsdk.ToolHandlerFor[ImprovePromptParams, types.ImprovementResult] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[ImprovePromptParams]) (*mcpsdk.CallToolResultFor[types.ImprovementResult], error) {
		args := params.Arguments
		if strings.TrimSpace(args.Idea) == "" {
			return nil, mcpError("MISSING_IDEA", "idea is required")
		}

		req := types.ImproveRequest{
			Idea:          args.Idea,
			Context:       args.Context,
			Preset:        types.Preset(args.Preset),
			Mode:          types.ExecutionMode(args.Mode),
			TimeoutMs:     args.TimeoutMs,
			Model:         args.Model,
			FallbackModel: args.FallbackModel,
		}
		result, err := engine.Improve(ctx, req)
		if err != nil {
			return nil, mcpError(string(err.Kind), err.Message)
		}

		return &mcpsdk.CallToolResultFor[types.ImprovementResult]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: result.ImprovedPrompt},
			},
			StructuredContent: result,
		}, nil
	}
}

func wizardTurnHandler(engine *orchestrator.Orchestrator, sessions *wizard.Manager) mcpsdk.ToolHandlerFor[WizardTurnParams, types.SessionRecord] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[WizardTurnParams]) (*mcpsdk.CallToolResultFor[types.SessionRecord], error) {
		args := params.Arguments

		if strings.TrimSpace(args.SessionID) == "" {
			return startWizardSession(ctx, engine, sessions, args)
		}
		return continueWizardSession(ctx, engine, sessions, args)
	}
}

func startWizardSession(ctx context.Context, engine *orchestrator.Orchestrator, sessions *wizard.Manager, args WizardTurnParams) (*mcpsdk.CallToolResultFor[types.SessionRecord], error) {
	if strings.TrimSpace(args.OriginalInput) == "" {
		return nil, mcpError("MISSING_ORIGINAL_INPUT", "original_input is required to start a wizard session")
	}

	preset := types.Preset(args.Preset)
	mode := wizardMode(args.Mode)
	maxTurns := args.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 3
	}

	analyzed := engine.Analyze(types.ImproveRequest{Idea: args.OriginalInput, Preset: preset})
	rec, err := sessions.Start(args.OriginalInput, preset, mode, maxTurns, analyzed.AnalysisConfidence, analyzed.Intent, analyzed.Complexity)
	if err != nil {
		return nil, mcpError("WIZARD_START_FAILED", err.Error())
	}

	if !rec.Wizard.Enabled {
		rec, err = resolveWizardWithPipeline(ctx, engine, sessions, rec)
		if err != nil {
			return nil, mcpError("WIZARD_RESOLVE_FAILED", err.Error())
		}
	}

	return &mcpsdk.CallToolResultFor[types.SessionRecord]{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: wizardSummary(rec)}},
		StructuredContent: rec,
	}, nil
}

func continueWizardSession(ctx context.Context, engine *orchestrator.Orchestrator, sessions *wizard.Manager, args WizardTurnParams) (*mcpsdk.CallToolResultFor[types.SessionRecord], error) {
	if strings.TrimSpace(args.Text) == "" {
		return nil, mcpError("MISSING_TEXT", "text is required to continue a wizard session")
	}

	rec, err := sessions.AppendUserMessage(args.SessionID, args.Text)
	if err != nil {
		return nil, mcpError("WIZARD_APPEND_FAILED", err.Error())
	}

	if rec.Wizard.Resolved {
		rec, err = resolveWizardWithPipeline(ctx, engine, sessions, rec)
		if err != nil {
			return nil, mcpError("WIZARD_RESOLVE_FAILED", err.Error())
		}
	}

	return &mcpsdk.CallToolResultFor[types.SessionRecord]{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: wizardSummary(rec)}},
		StructuredContent: rec,
	}, nil
}

// resolveWizardWithPipeline runs the orchestrator over the accumulated
// conversation and appends its output as the closing assistant message
// (spec.md §2: "the Wizard ... composes the Orchestrator across turns").
func resolveWizardWithPipeline(ctx context.Context, engine *orchestrator.Orchestrator, sessions *wizard.Manager, rec types.SessionRecord) (types.SessionRecord, error) {
	idea := combinedIdea(wizard.ToChatFormat(rec))
	result, improveErr := engine.Improve(ctx, types.ImproveRequest{Idea: idea, Preset: rec.Preset})
	if improveErr != nil {
		return rec, improveErr
	}
	return sessions.AppendAssistantMessage(rec.ID, "# "+result.ImprovedPrompt, result.Confidence, false)
}

func combinedIdea(messages []types.Message) string {
	var parts []string
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

func wizardSummary(rec types.SessionRecord) string {
	if final, ok := wizard.ExtractFinalPrompt(rec); ok {
		return final
	}
	if !rec.Wizard.Enabled || rec.Wizard.Resolved {
		return "Wizard session " + rec.ID + " resolved with no final prompt extracted."
	}
	return "Wizard session " + rec.ID + " awaiting turn " + strconv.Itoa(rec.Wizard.CurrentTurn+1) + " of " + strconv.Itoa(rec.Wizard.MaxTurns) + "."
}

func wizardMode(raw string) types.WizardMode {
	if raw == "" {
		return types.WizardModeAuto
	}
	return types.WizardMode(raw)
}
