// Package messages holds the results that background commands send back
// to the chat model.
package messages

import "github.com/custodia-labs/medibot/internal/core/domain"

// AnswerReceived ends one ask round trip. Question is the text as typed.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// StatsLoaded feeds the chunk count in the status bar.
type StatsLoaded struct {
	Stats *domain.CatalogStats
	Err   error
}
