package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to the
	// compiled-in default when no override exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptMedicalAnswer is the answer template. It expects the
	// {context} and {question} placeholders.
	PromptMedicalAnswer = "medical_answer"
)

// Placeholders substituted into PromptMedicalAnswer.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// DefaultMedicalAnswerPrompt is the compiled-in answer template.
const DefaultMedicalAnswerPrompt = `
You are a medical information assistant.

RULES:
- Answer ONLY if the context matches the same medical condition.
- Do NOT mix diseases or conditions.
- Do NOT guess or invent information.
- Do NOT mention books, documents, or sources.

Answer in the following structure:
1. Overview
2. Causes
3. Symptoms
4. Treatment / Management
5. When to see a doctor

If the information is insufficient or unclear, reply EXACTLY with:
"I do not have reliable medical information to answer this question."

Context:
{context}

Question:
{question}

Answer:
`
