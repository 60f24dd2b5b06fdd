package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/internal/cache"
	"github.com/josephgoksu/promptforge/internal/history"
	"github.com/josephgoksu/promptforge/internal/knn"
	"github.com/josephgoksu/promptforge/internal/llmclient"
	"github.com/josephgoksu/promptforge/internal/quality"
	"github.com/josephgoksu/promptforge/llm"
	"github.com/josephgoksu/promptforge/types"
)

type scriptedTransport struct {
	body    string
	err     error
	calls   int
	lastReq llm.ChatRequest
}

func (t *scriptedTransport) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	t.calls++
	t.lastReq = req
	if t.err != nil {
		return "", t.err
	}
	return t.body, nil
}

func okBody(prompt string, confidence float64) string {
	return `{"improved_prompt":"` + prompt + `","clarifying_questions":[],"assumptions":[],"confidence":` + floatStr(confidence) + `}`
}

func floatStr(f float64) string {
	if f == 1 {
		return "1.0"
	}
	return "0.9"
}

func newTestOrchestrator(t *testing.T, transport llm.Transport) (*Orchestrator, *history.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	hist := history.NewStore(fs, "/history/log.jsonl", 10)
	o := New(transport, nil, cache.New(cache.Config{}), hist, llmclient.Options{
		Model:            "gpt-test",
		TimeoutMs:        5000,
		EnableAutoRepair: true,
	})
	return o, hist
}

func TestImproveRejectsShortIdea(t *testing.T) {
	o, _ := newTestOrchestrator(t, &scriptedTransport{body: okBody("x", 1)})
	_, err := o.Improve(context.Background(), types.ImproveRequest{Idea: "hi"})
	if err == nil {
		t.Fatal("expected an input error for a too-short idea")
	}
}

func TestImproveHappyPathRecordsHistory(t *testing.T) {
	transport := &scriptedTransport{body: okBody("Build a login form with OAuth2 support and clear acceptance criteria.", 1)}
	o, hist := newTestOrchestrator(t, transport)

	result, err := o.Improve(context.Background(), types.ImproveRequest{Idea: "build a login form"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.ImprovedPrompt, "OAuth2") {
		t.Fatalf("expected the improved prompt to come from the transport, got %q", result.ImprovedPrompt)
	}

	entries, listErr := hist.List(0)
	if listErr != nil {
		t.Fatalf("unexpected error: %v", listErr)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry to be recorded, got %d", len(entries))
	}
}

func TestImproveCachesSecondIdenticalRequest(t *testing.T) {
	transport := &scriptedTransport{body: okBody("Build a login form with OAuth2 support and clear acceptance criteria.", 1)}
	o, _ := newTestOrchestrator(t, transport)

	req := types.ImproveRequest{Idea: "build a login form"}
	if _, err := o.Improve(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := o.Improve(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("expected the second identical request to hit the cache, got %d transport calls", transport.calls)
	}
}

func TestImproveDegradesToIdentityWithoutTransport(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	result, err := o.Improve(context.Background(), types.ImproveRequest{Idea: "build a login form with OAuth2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Meta.Backend != "identity" {
		t.Fatalf("expected identity backend without a transport, got %q", result.Meta.Backend)
	}
}

func TestImproveRefactorRequiresExpectedOutputExamples(t *testing.T) {
	catalog := knn.NewProvider([]types.FewShotExample{
		{ID: "no-output", Input: "refactor this payment function", Output: "# Refactor\n...", Intent: types.IntentRefactor, Complexity: types.ComplexitySimple, HasExpectedOutput: false},
		{ID: "has-output", Input: "refactor payment processing cleanup", Output: "# Refactor\n...", Intent: types.IntentRefactor, Complexity: types.ComplexitySimple, HasExpectedOutput: true},
	})
	transport := &scriptedTransport{body: okBody("Refactor the payment function for readability and testability.", 1)}
	fs := afero.NewMemMapFs()
	hist := history.NewStore(fs, "/history/log.jsonl", 10)
	o := New(transport, catalog, cache.New(cache.Config{}), hist, llmclient.Options{Model: "gpt-test", TimeoutMs: 5000, EnableAutoRepair: true})

	analyzed := types.AnalyzedRequest{
		ImproveRequest: types.ImproveRequest{Idea: "refactor payment processing"},
		Intent:         types.IntentRefactor,
		Complexity:     types.ComplexitySimple,
	}
	result, err := o.compute(context.Background(), analyzed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.ImprovedPrompt, "Refactor") {
		t.Fatalf("expected a refactor prompt, got %q", result.ImprovedPrompt)
	}

	if strings.Contains(transport.lastReq.User, "refactor this payment function") {
		t.Fatalf("expected the example lacking an expected output to be excluded from the assembled prompt, got %q", transport.lastReq.User)
	}
	if !strings.Contains(transport.lastReq.User, "refactor payment processing cleanup") {
		t.Fatalf("expected the has-expected-output example in the assembled prompt, got %q", transport.lastReq.User)
	}
}

func TestImproveUsesLiveQualitySourceOverBaseOpts(t *testing.T) {
	transport := &scriptedTransport{body: okBody("this contains a forbidden phrase right here", 1)}
	o, _ := newTestOrchestrator(t, transport)
	o.QualitySource = func() quality.Config {
		return quality.Config{BannedSnippets: []string{"forbidden phrase"}}
	}

	_, err := o.Improve(context.Background(), types.ImproveRequest{Idea: "build a login form"})
	if err == nil || err.Kind != "QualityGateFailure" {
		t.Fatalf("expected a live-reloaded banned snippet to trip the quality gate, got %v", err)
	}
}

func TestImproveUsesKnnCatalogWhenConfigured(t *testing.T) {
	catalog := knn.NewProvider([]types.FewShotExample{
		{ID: "ex1", Input: "build a signup form", Output: "# Build a signup form\n...", Intent: types.IntentGenerate, Complexity: types.ComplexitySimple},
	})
	transport := &scriptedTransport{body: okBody("Build a login form with OAuth2 support and clear acceptance criteria.", 1)}
	fs := afero.NewMemMapFs()
	hist := history.NewStore(fs, "/history/log.jsonl", 10)
	o := New(transport, catalog, cache.New(cache.Config{}), hist, llmclient.Options{Model: "gpt-test", TimeoutMs: 5000, EnableAutoRepair: true})

	if _, err := o.Improve(context.Background(), types.ImproveRequest{Idea: "build a login form"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("expected exactly one transport call, got %d", transport.calls)
	}
}
