package complexity

import (
	"testing"

	"github.com/josephgoksu/promptforge/types"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		idea string
		want types.Complexity
	}{
		{"short simple", "write a function to reverse a string", types.ComplexitySimple},
		{"moderate with connector", "write a function to reverse a string, and also test it", types.ComplexityModerate},
		{
			"complex long",
			"create a comprehensive authentication system with OAuth2, JWT access and refresh tokens, RBAC roles Admin User Guest, Redis-backed sessions, and email password reset flows for the entire platform",
			types.ComplexityComplex,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.idea)
			if got.Level != tt.want {
				t.Errorf("Analyze(%q).Level = %v, want %v", tt.idea, got.Level, tt.want)
			}
		})
	}
}
