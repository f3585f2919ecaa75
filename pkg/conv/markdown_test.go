package conv

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "empty input",
			input:    "",
			contains: nil,
		},
		{
			name:     "bold text",
			input:    "**bold**",
			contains: []string{"<strong>bold</strong>"},
		},
		{
			name:     "headers survive",
			input:    "## Treatment Plan",
			contains: []string{"<h2"},
		},
		{
			name:     "lists survive",
			input:    "- fluids\n- antiemetics",
			contains: []string{"<ul>", "<li>fluids</li>"},
		},
		{
			name:     "tables survive",
			input:    "| Stage | Creatinine |\n|---|---|\n| 1 | <1.4 |",
			contains: []string{"<table>", "<th>Stage</th>"},
		},
		{
			name:     "inline code",
			input:    "`0.5 mg/kg`",
			contains: []string{"<code>0.5 mg/kg</code>"},
		},
		{
			name:     "blockquote",
			input:    "> verify dosing",
			contains: []string{"<blockquote>"},
		},
		{
			name:     "script tags sanitized",
			input:    "<script>alert('xss')</script>",
			excludes: []string{"<script", "alert"},
		},
		{
			name:     "event handlers stripped",
			input:    `<p onclick="evil()">text</p>`,
			contains: []string{"<p>text</p>"},
			excludes: []string{"onclick"},
		},
		{
			name:     "images stripped",
			input:    "![x](https://example.com/x.png)",
			excludes: []string{"<img"},
		},
		{
			name:     "links keep href",
			input:    "[IRIS guidelines](https://iris-kidney.com)",
			contains: []string{`href="https://iris-kidney.com"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToHTML([]byte(tt.input))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("output %q must not contain %q", got, bad)
				}
			}
		})
	}
}
