package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/normalisers"
)

const medlinePage = `<!DOCTYPE html>
<html>
<head>
  <title>Heart attack: MedlinePlus Medical Encyclopedia</title>
  <style>.page { color: red; }</style>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Heart attack</h1>
    <p>Most heart attacks are caused by a <strong>blood clot</strong> that blocks a coronary artery.</p>
    <ul><li>Chest pain</li><li>Shortness of breath</li></ul>
  </article>
  <script>trackPageView();</script>
  <!-- analytics -->
  <footer><p>&copy; 2024 U.S. National Library of Medicine</p></footer>
</body>
</html>`

func TestNormaliser_Descriptors(t *testing.T) {
	n := New()
	assert.ElementsMatch(t, []string{"text/html", "application/xhtml+xml"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_MedicalPage(t *testing.T) {
	raw := &domain.RawDocument{
		Provenance: domain.ProvenanceWeb,
		URI:        "https://medlineplus.gov/ency/article/000195.htm",
		MIMEType:   "text/html; charset=utf-8",
		Content:    []byte(medlinePage),
		Metadata:   map[string]any{"etag": `"abc"`},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, normalisers.DocumentID(domain.ProvenanceWeb, raw.URI), doc.ID)
	assert.Equal(t, domain.ProvenanceWeb, doc.Provenance)
	assert.Equal(t, "Heart attack: MedlinePlus Medical Encyclopedia", doc.Title)
	assert.Contains(t, doc.Content, "Most heart attacks are caused by a blood clot")
	assert.Contains(t, doc.Content, "Chest pain\nShortness of breath")
	assert.NotContains(t, doc.Content, "National Library of Medicine")
	assert.NotContains(t, doc.Content, "Home")
	assert.NotContains(t, doc.Content, "trackPageView")
	assert.NotContains(t, doc.Content, "color: red")
	assert.NotContains(t, doc.Content, "analytics")
	assert.Equal(t, `"abc"`, doc.Metadata["etag"])
	assert.Equal(t, "html", doc.Metadata[domain.MetaFormat])
}

func TestNormalise_Title(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		metadata map[string]any
		want     string
	}{
		{"title tag", "<title> Diabetes </title>", "https://x.org/a", nil, "Diabetes"},
		{"entities decoded", "<title>Cancer &amp; you</title>", "https://x.org/a", nil, "Cancer & you"},
		{"connector title wins", "<title>Ignored</title>", "https://x.org/a", map[string]any{"title": "Hair loss"}, "Hair loss"},
		{"falls back to uri", "<p>body</p>", "https://who.int/fact-sheets/cancer", nil, "cancer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawDocument{
				Provenance: domain.ProvenanceWeb,
				URI:        tt.uri,
				MIMEType:   "text/html",
				Content:    []byte(tt.content),
				Metadata:   tt.metadata,
			}
			result, err := New().Normalise(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Document.Title)
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Insulin", "Insulin"},
		{"paragraphs become lines", "<p>One</p><p>Two</p>", "One\nTwo"},
		{"br tags", "line<br>next<br/>last", "line\nnext\nlast"},
		{"inline tags dropped", "a <b>bold</b> claim", "a bold claim"},
		{"spaces collapsed", "<p>too    many   spaces</p>", "too many spaces"},
		{"empty", "", ""},
		{"navigation dropped", "<nav><li>Home</li></nav><p>Asthma</p>", "Asthma"},
		{"header kept", "<header><h1>Flu</h1></header>", "Flu"},
		{"nested markup in dropped element", "<form><div><input></div></form>Text", "Text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHTML(tt.input))
		})
	}
}

func TestNormalise_PrefersMainElement(t *testing.T) {
	page := `<html><body>
<header><p>Skip to content</p></header>
<main id="content"><h1>Diabetes</h1><p>Diabetes is a disease in which blood glucose levels are too high.</p></main>
<aside><p>Related topics</p></aside>
</body></html>`
	raw := &domain.RawDocument{
		Provenance: domain.ProvenanceWeb,
		URI:        "https://medlineplus.gov/diabetes.html",
		MIMEType:   "text/html",
		Content:    []byte(page),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Diabetes\nDiabetes is a disease in which blood glucose levels are too high.", result.Document.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}
