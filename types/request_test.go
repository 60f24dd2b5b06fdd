package types

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ImproveRequest
		want ImproveRequest
	}{
		{
			name: "trims and collapses whitespace",
			in:   ImproveRequest{Idea: "  write   a func  ", Context: "\tsome\ncontext  "},
			want: ImproveRequest{Idea: "write a func", Context: "some context", Preset: PresetDefault, Mode: ExecutionModeRemote},
		},
		{
			name: "keeps explicit preset and mode",
			in:   ImproveRequest{Idea: "x", Preset: PresetCoding, Mode: ExecutionModeLocal},
			want: ImproveRequest{Idea: "x", Preset: PresetCoding, Mode: ExecutionModeLocal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Idea != tt.want.Idea || got.Context != tt.want.Context || got.Preset != tt.want.Preset || got.Mode != tt.want.Mode {
				t.Fatalf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIntentValid(t *testing.T) {
	if !IntentDebug.Valid() {
		t.Fatal("IntentDebug should be valid")
	}
	if Intent("bogus").Valid() {
		t.Fatal("bogus intent should be invalid")
	}
}
