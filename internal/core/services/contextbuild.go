package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// DefaultMaxContextChars bounds the assembled context.
const DefaultMaxContextChars = 1800

// ContextSeparator follows every passage in the context.
const ContextSeparator = "\n\n"

var spaceRun = regexp.MustCompile(`\s+`)

// AssembleContext concatenates passage texts in retrieval order. Each text
// is trimmed and has its whitespace collapsed. The first passage that would
// take the context past maxChars stops assembly and is left out whole.
// A maxChars below 1 is treated as DefaultMaxContextChars.
func AssembleContext(passages []domain.Passage, maxChars int) string {
	if maxChars < 1 {
		maxChars = DefaultMaxContextChars
	}

	var b strings.Builder
	length := 0
	for _, p := range passages {
		text := spaceRun.ReplaceAllString(strings.TrimSpace(p.Content), " ")
		n := utf8.RuneCountInString(text)
		if length+n > maxChars {
			break
		}
		b.WriteString(text)
		b.WriteString(ContextSeparator)
		length += n + utf8.RuneCountInString(ContextSeparator)
	}

	return strings.TrimSpace(b.String())
}
