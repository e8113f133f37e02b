package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser turns trusted medical web pages into plain text.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // above plaintext
}

// Normalise keeps the page's main content and returns it as text, one
// block element per line. Site chrome (navigation, footers, sidebars,
// forms) is dropped so it never reaches the index.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)

	title := normalisers.MetadataTitle(raw)
	if title == "" {
		title = pageTitle(page, raw.URI)
	}

	doc := normalisers.NewDocument(raw, title, stripHTML(mainContent(page)), "html")
	return &driven.NormaliseResult{Document: doc}, nil
}

// droppedElements are removed together with everything inside them.
var droppedElements = []string{
	"head", "script", "style", "noscript", "svg", "iframe", "template",
	"nav", "footer", "aside", "form", "button",
}

var (
	titleTag    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	mainTag     = regexp.MustCompile(`(?is)<main[^>]*>(.*)</main>`)
	comments    = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockOpen   = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|dt|dd|blockquote|pre|table|section|article)\b[^>]*>`)
	blockClose  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|dt|dd|blockquote|pre|table|section|article)>`)
	lineBreaks  = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	spaceRuns   = regexp.MustCompile(`[ \t\r\f\v]+`)
	droppedTags = compileDropped(droppedElements)
)

func compileDropped(names []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(names))
	for i, name := range names {
		res[i] = regexp.MustCompile(`(?is)<` + name + `\b[^>]*>.*?</` + name + `>`)
	}
	return res
}

// pageTitle returns the <title> text, or a title derived from uri.
func pageTitle(page, uri string) string {
	if m := titleTag.FindStringSubmatch(page); len(m) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
			return title
		}
	}
	return normalisers.TitleFromURI(uri)
}

// mainContent returns the inside of <main> when the page has one.
func mainContent(page string) string {
	if m := mainTag.FindStringSubmatch(page); len(m) > 1 {
		return m[1]
	}
	return page
}

// stripHTML removes markup and returns readable text with one line per
// block element and no blank lines.
func stripHTML(content string) string {
	content = comments.ReplaceAllString(content, "")
	for _, re := range droppedTags {
		content = re.ReplaceAllString(content, "")
	}

	content = blockOpen.ReplaceAllString(content, "\n")
	content = blockClose.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = spaceRuns.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
