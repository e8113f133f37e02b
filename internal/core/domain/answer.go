package domain

import "strings"

// Fixed user-facing messages of the ask pipeline.
const (
	// NoReliableInfoMessage is the sentence the model must emit verbatim when
	// the context is insufficient. It also opens the refusal answer.
	NoReliableInfoMessage = "I do not have reliable medical information to answer this question."

	// ConsultNote is appended to every refusal.
	ConsultNote = "<em>Please consult a qualified healthcare professional.</em>"

	// RefusalAnswer is returned whenever the relevance gate does not pass.
	RefusalAnswer = NoReliableInfoMessage + "<br>" + ConsultNote

	// InvalidQuestionMessage is returned for empty or whitespace-only questions.
	InvalidQuestionMessage = "Please enter a valid medical question."
)

// Passage is a chunk returned by the vector index for one question.
// Passages are never persisted.
type Passage struct {
	// ChunkID identifies the indexed chunk.
	ChunkID string `json:"chunk_id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Provenance is the source kind of the chunk's document.
	Provenance Provenance `json:"source"`

	// Score is the index similarity, higher is closer.
	Score float64 `json:"score"`

	// Metadata holds the index metadata for the chunk.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Title returns the document title recorded for the passage, if any.
func (p Passage) Title() string {
	return p.Metadata[MetaTitle]
}

// URI returns the document location recorded for the passage, if any.
func (p Passage) URI() string {
	return p.Metadata[MetaURI]
}

// Outcome classifies how an ask request ended.
type Outcome string

// Possible outcomes.
const (
	// OutcomeAnswered means the model produced the answer.
	OutcomeAnswered Outcome = "answered"

	// OutcomeRefused means the relevance gate rejected the evidence.
	OutcomeRefused Outcome = "refused"

	// OutcomeInvalid means the question failed validation.
	OutcomeInvalid Outcome = "invalid"
)

// Answer is the result of one ask request.
type Answer struct {
	// Question is the trimmed question text.
	Question string `json:"question"`

	// Text is the sanitised answer, the refusal or the validation message.
	Text string `json:"answer"`

	// Outcome records which path produced Text.
	Outcome Outcome `json:"outcome"`

	// Keywords is the question's keyword set in first-seen order.
	Keywords []string `json:"keywords,omitempty"`

	// Matches is the number of passages that contained a keyword.
	Matches int `json:"matches"`

	// Passages are the retrieved passages, in retrieval order.
	Passages []Passage `json:"passages,omitempty"`
}

// Refused reports whether the answer is the fixed refusal.
func (a *Answer) Refused() bool {
	return a != nil && a.Outcome == OutcomeRefused
}

// terminalText maps the markup the pipeline emits to plain text.
var terminalText = strings.NewReplacer("<br>", "\n", "<em>", "", "</em>", "")

// PlainText returns Text for terminals: <br> becomes a newline and
// emphasis tags are dropped.
func (a *Answer) PlainText() string {
	if a == nil {
		return ""
	}
	return terminalText.Replace(a.Text)
}
