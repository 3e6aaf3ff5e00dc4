package refinery

import (
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// StopWords is a read-only set of words dropped before lemmatization.
type StopWords interface {
	Contains(word string) bool
}

// Tokenizer splits normalized text into word tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Lemmatizer maps a word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Resources bundles the linguistic collaborators a refinery is built with.
// All three must be immutable and safe for concurrent use.
type Resources struct {
	StopWords  StopWords
	Tokenizer  Tokenizer
	Lemmatizer Lemmatizer
}

// Validate fails when any resource is missing
func (r *Resources) Validate() error {
	if r == nil {
		return apperrors.ResourceUnavailable("resources", nil)
	}
	if r.StopWords == nil {
		return apperrors.ResourceUnavailable("stop words", nil)
	}
	if r.Tokenizer == nil {
		return apperrors.ResourceUnavailable("tokenizer", nil)
	}
	if r.Lemmatizer == nil {
		return apperrors.ResourceUnavailable("lemmatizer", nil)
	}
	return nil
}
