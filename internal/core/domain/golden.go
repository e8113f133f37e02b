package domain

// Expectation is the outcome a golden case expects.
type Expectation string

// Possible expectations.
const (
	ExpectAnswer Expectation = "answer"
	ExpectRefuse Expectation = "refuse"
)

// GoldenCase is one question of an evaluation set.
type GoldenCase struct {
	// ID names the case in reports.
	ID string

	// Question is asked verbatim.
	Question string

	// Expect is the required outcome.
	Expect Expectation

	// MustContain lists substrings the answer must include (case-insensitive).
	MustContain []string
}

// GoldenSet is a named list of golden cases.
type GoldenSet struct {
	Name  string
	Cases []GoldenCase
}

// EvalResult is the outcome of one golden case.
type EvalResult struct {
	Case    GoldenCase
	Outcome Outcome
	Answer  string
	Passed  bool
	Reason  string
}

// EvalReport aggregates the results of a golden set.
type EvalReport struct {
	Name    string
	Results []EvalResult
}

// Passed returns the number of passing cases.
func (r *EvalReport) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of failing cases.
func (r *EvalReport) Failed() int {
	return len(r.Results) - r.Passed()
}
