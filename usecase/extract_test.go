package usecase

import "testing"

func TestExtractCorrection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "double quoted substring wins",
			text: `He said "I go to store" yesterday.`,
			want: "I go to store",
		},
		{
			name: "single quoted substring",
			text: "Try saying 'I went to the store' instead",
			want: "I went to the store",
		},
		{
			name: "double quotes win over single quotes",
			text: `Say "hello there" not 'hi'`,
			want: "hello there",
		},
		{
			name: "last clause when no quotes",
			text: "no quotes here. Last clause stands.",
			want: "Last clause stands",
		},
		{
			name: "last clause skips trailing emptiness",
			text: "One sentence. Another one!  ",
			want: "Another one",
		},
		{
			name: "whole text verbatim as final fallback",
			text: "just some words with no punctuation",
			want: "just some words with no punctuation",
		},
		{
			name: "unterminated quote falls through",
			text: `He said "wait. Try again.`,
			want: "Try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCorrection(tt.text); got != tt.want {
				t.Errorf("ExtractCorrection(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
