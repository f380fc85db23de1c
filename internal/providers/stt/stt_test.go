package stt

import "testing"

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		alts     []Alternative
		wantText string
		wantConf float64
	}{
		{"none", nil, "", 0},
		{"blank only", []Alternative{{Text: "  ", Confidence: 0.9}}, "", 0},
		{"single", []Alternative{{Text: " I went to the ", Confidence: 0.8}}, "I went to the", 0.8},
		{
			"in order",
			[]Alternative{{Text: "I went", Confidence: 0.5}, {Text: ""}, {Text: "to the uh", Confidence: 1}},
			"I went to the uh", 0.75,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, conf := Join(tt.alts)
			if text != tt.wantText || conf != tt.wantConf {
				t.Fatalf("Join = %q %v, want %q %v", text, conf, tt.wantText, tt.wantConf)
			}
		})
	}
}
