package llmclient

import "testing"

type payload struct {
	ImprovedPrompt string `json:"improved_prompt"`
	Confidence     float64 `json:"confidence"`
}

func TestExtractJSONStrictParse(t *testing.T) {
	v, method, err := ExtractJSON[payload](`{"improved_prompt":"do the thing","confidence":0.8}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != MethodStrictParse {
		t.Fatalf("expected strict parse, got %s", method)
	}
	if v.ImprovedPrompt != "do the thing" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestExtractJSONFencedBlock(t *testing.T) {
	body := "Sure, here you go:\n```json\n{\"improved_prompt\":\"fenced\",\"confidence\":0.5}\n```\nHope that helps!"
	v, method, err := ExtractJSON[payload](body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != MethodFencedBlock {
		t.Fatalf("expected fenced block, got %s", method)
	}
	if v.ImprovedPrompt != "fenced" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestExtractJSONTaggedBlock(t *testing.T) {
	body := "preamble <json>{\"improved_prompt\":\"tagged\",\"confidence\":0.3}</json> trailing"
	v, method, err := ExtractJSON[payload](body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != MethodTaggedBlock {
		t.Fatalf("expected tagged block, got %s", method)
	}
	if v.ImprovedPrompt != "tagged" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestExtractJSONFirstBalanced(t *testing.T) {
	body := `Here is my analysis {"improved_prompt": "balanced {nested} value", "confidence": 0.9} and some trailing chatter { not json`
	v, method, err := ExtractJSON[payload](body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != MethodFirstBalanced {
		t.Fatalf("expected first balanced, got %s", method)
	}
	if v.ImprovedPrompt != "balanced {nested} value" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestExtractJSONRepairsTrailingComma(t *testing.T) {
	body := `{"improved_prompt": "needs repair", "confidence": 0.4,}`
	v, _, err := ExtractJSON[payload](body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ImprovedPrompt != "needs repair" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestExtractJSONNoObjectFails(t *testing.T) {
	if _, _, err := ExtractJSON[payload]("no json anywhere in this text"); err == nil {
		t.Fatal("expected an error when no JSON object is present")
	}
}
