/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/promptforge/internal/logger"
	"github.com/josephgoksu/promptforge/internal/orchestrator"
	"github.com/josephgoksu/promptforge/internal/wizard"
	"github.com/josephgoksu/promptforge/types"
)

var (
	improvePreset string
	improveWizard bool
)

// improveCmd turns a rough idea into a structured, higher-quality prompt.
var improveCmd = &cobra.Command{
	Use:   "improve [idea]",
	Short: "Turn a rough idea into a structured, higher-quality prompt",
	Long: `Classifies the idea's intent and complexity, retrieves similar few-shot
examples, and runs an intent-routed optimizer to produce a structured
prompt with clarifying questions, assumptions, and a confidence score.`,
	Example: `  promptforge improve "build a login form with oauth2"
  promptforge improve --wizard "something to help onboard new hires"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idea := strings.Join(args, " ")
		logger.SetCommand("improve")
		logger.SetLastInput(idea)

		engine, sessions, watcher, _, err := buildEngine(cfgFile)
		if err != nil {
			return fmt.Errorf("wire engine: %w", err)
		}
		if watcher != nil {
			defer watcher.Close()
		}

		ctx := context.Background()
		if improveWizard {
			return runWizard(ctx, engine, sessions, idea)
		}

		fmt.Print("Improving prompt... ")
		result, ierr := engine.Improve(ctx, types.ImproveRequest{Idea: idea, Preset: types.Preset(improvePreset)})
		fmt.Print("\r")
		if ierr != nil {
			logger.SetLastError(ierr)
			return fmt.Errorf("improve: %s", ierr.Message)
		}

		logger.SetLastPrompt(result.ImprovedPrompt)
		printResult(result)
		return nil
	},
}

// runWizard drives the interactive clarification loop from the terminal,
// then runs the pipeline over the accumulated conversation exactly as
// mcp.resolveWizardWithPipeline does for the MCP transport.
func runWizard(ctx context.Context, engine *orchestrator.Orchestrator, sessions *wizard.Manager, idea string) error {
	analyzed := engine.Analyze(types.ImproveRequest{Idea: idea, Preset: types.Preset(improvePreset)})
	rec, err := sessions.Start(idea, types.Preset(improvePreset), types.WizardModeAuto, 3, analyzed.AnalysisConfidence, analyzed.Intent, analyzed.Complexity)
	if err != nil {
		return fmt.Errorf("start wizard session: %w", err)
	}

	for !rec.Wizard.Resolved {
		prompt := promptui.Prompt{Label: fmt.Sprintf("Turn %d/%d - clarify your idea", rec.Wizard.CurrentTurn+1, rec.Wizard.MaxTurns)}
		text, rerr := prompt.Run()
		if rerr != nil {
			return fmt.Errorf("read clarification: %w", rerr)
		}
		rec, err = sessions.AppendUserMessage(rec.ID, text)
		if err != nil {
			return fmt.Errorf("append clarification: %w", err)
		}
	}

	combined := strings.Builder{}
	for _, msg := range wizard.ToChatFormat(rec) {
		if combined.Len() > 0 {
			combined.WriteByte('\n')
		}
		combined.WriteString(msg.Content)
	}

	result, ierr := engine.Improve(ctx, types.ImproveRequest{Idea: combined.String(), Preset: rec.Preset})
	if ierr != nil {
		logger.SetLastError(ierr)
		return fmt.Errorf("improve: %s", ierr.Message)
	}
	if _, err := sessions.AppendAssistantMessage(rec.ID, "# "+result.ImprovedPrompt, result.Confidence, false); err != nil {
		return fmt.Errorf("record final prompt: %w", err)
	}

	logger.SetLastPrompt(result.ImprovedPrompt)
	printResult(result)
	return nil
}

func printResult(result types.ImprovementResult) {
	fmt.Println(result.ImprovedPrompt)
	if len(result.ClarifyingQuestions) > 0 {
		fmt.Println("\nClarifying questions:")
		for _, q := range result.ClarifyingQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
	if len(result.Assumptions) > 0 {
		fmt.Println("\nAssumptions:")
		for _, a := range result.Assumptions {
			fmt.Printf("  - %s\n", a)
		}
	}
	fmt.Printf("\nConfidence: %.2f\n", result.Confidence)
}

func init() {
	rootCmd.AddCommand(improveCmd)
	improveCmd.Flags().StringVar(&improvePreset, "preset", string(types.PresetDefault), "preset to use: default, specific, structured, coding")
	improveCmd.Flags().BoolVar(&improveWizard, "wizard", false, "run the multi-turn ambiguity-resolution wizard before improving")
}
