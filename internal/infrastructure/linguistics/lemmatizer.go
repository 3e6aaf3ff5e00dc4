package linguistics

import (
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// maxLemmaHops bounds the search for a lemma that maps to itself
const maxLemmaHops = 4

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// GolemLemmatizer maps English words to dictionary base forms
type GolemLemmatizer struct {
	lemmatizer *golem.Lemmatizer
}

// NewGolemLemmatizer loads the English dictionary
func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, apperrors.ResourceUnavailable("lemmatizer", err)
	}
	return &GolemLemmatizer{lemmatizer: l}, nil
}

// Lemma returns the base form of word, or word itself when the dictionary has
// no usable entry. The result is always its own lemma.
func (g *GolemLemmatizer) Lemma(word string) string {
	current := word
	for i := 0; i < maxLemmaHops; i++ {
		next := g.lemmatizer.Lemma(current)
		if !isSingleLowerWord(next) {
			return current
		}
		if next == current {
			return current
		}
		current = next
	}
	return current
}

// isSingleLowerWord rejects dictionary entries that would not survive another
// cleaning pass unchanged (multiword, capitalized or punctuated lemmas)
func isSingleLowerWord(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, asciiPunctuation) || strings.HasPrefix(s, "http") {
		return false
	}
	for _, r := range s {
		if isSeparator(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
