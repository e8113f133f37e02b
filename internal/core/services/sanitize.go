package services

import (
	"regexp"
	"strings"
)

// LineBreak replaces newline runs in answers shown by the front ends.
const LineBreak = "<br>"

const documentReprOpen = "Document("

var newlineRun = regexp.MustCompile(`(?:\r?\n)+`)

// Sanitize removes leaked Document(...) object representations, turns
// every run of newlines into LineBreak and trims the result.
func Sanitize(raw string) string {
	s := stripDocumentReprs(raw)
	s = newlineRun.ReplaceAllString(s, LineBreak)
	return strings.TrimSpace(s)
}

// stripDocumentReprs cuts each "Document(" through its matching close
// paren, so parentheses inside page content do not end the match early.
// A representation that is never closed is left in place.
func stripDocumentReprs(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, documentReprOpen)
		if start < 0 {
			break
		}
		end := closingParen(s, start+len(documentReprOpen)-1)
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		s = s[end+1:]
	}
	b.WriteString(s)
	return b.String()
}

// closingParen returns the index of the paren closing the one at open,
// or -1.
func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
