// Package usecase contains the turn pipeline: the stage sequencer, the
// controller that gates turns, and the small pure helpers they share.
package usecase

import "strings"

// ExtractCorrection pulls the corrected sentence out of a combined feedback
// paragraph. Precedence: first double-quoted substring, then first
// single-quoted substring, then the last sentence-delimited clause, then the
// whole text verbatim.
func ExtractCorrection(text string) string {
	if s, ok := quoted(text, '"'); ok {
		return s
	}
	if s, ok := quoted(text, '\''); ok {
		return s
	}
	if s := lastClause(text); s != "" {
		return s
	}
	return text
}

func quoted(text string, mark byte) (string, bool) {
	open := strings.IndexByte(text, mark)
	if open < 0 {
		return "", false
	}
	closeRel := strings.IndexByte(text[open+1:], mark)
	if closeRel < 0 {
		return "", false
	}
	inner := text[open+1 : open+1+closeRel]
	if inner == "" {
		return "", false
	}
	return inner, true
}

func lastClause(text string) string {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}
