package refinery

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// asciiPunctuation is the full ASCII punctuation set
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// hyperlinkPattern matches "http" followed by at least one non-whitespace rune.
// Whitespace here is the Unicode notion (NBSP, ideographic space, U+001C..U+001F, ...)
// so a link ends where a reader would see it end.
var hyperlinkPattern = regexp.MustCompile(`http[^\t\n\v\f\r\x1c-\x1f\x{85}\p{Z}]+`)

var punctuationRemover = func() *strings.Replacer {
	oldnew := make([]string, 0, 2*len(asciiPunctuation))
	for _, r := range asciiPunctuation {
		oldnew = append(oldnew, string(r), "")
	}
	return strings.NewReplacer(oldnew...)
}()

// ProcessingNodes contains reusable text processing methods
// Each method does one specific transformation
type ProcessingNodes struct {
	resources *Resources
}

// NewProcessingNodes creates a new ProcessingNodes over validated resources
func NewProcessingNodes(resources *Resources) *ProcessingNodes {
	return &ProcessingNodes{
		resources: resources,
	}
}

// RemoveHyperlinks deletes every link together with its trailing path and query
func (p *ProcessingNodes) RemoveHyperlinks(text string) string {
	return hyperlinkPattern.ReplaceAllString(text, "")
}

// RemovePunctuation deletes ASCII punctuation without inserting a separator,
// so "don't" becomes "dont" and "end.Start" becomes "endStart"
func (p *ProcessingNodes) RemovePunctuation(text string) string {
	return punctuationRemover.Replace(text)
}

// FoldCase lowercases text independently of the process locale
func (p *ProcessingNodes) FoldCase(text string) string {
	// cases.Caser keeps state between calls and must not be shared
	return cases.Lower(language.Und).String(text)
}

// Tokenize splits text into word tokens using the configured tokenizer
func (p *ProcessingNodes) Tokenize(text string) []string {
	return p.resources.Tokenizer.Tokenize(text)
}

// FilterAndLemmatize drops stop words and replaces every other token with its lemma.
// A lemma that is itself a stop word is dropped as well.
//
// Links written in upper case, or split by punctuation ("h.ttp"), only read as
// "http..." after folding, so the link pattern is applied again per token.
func (p *ProcessingNodes) FilterAndLemmatize(tokens []string) []string {
	kept := make([]string, 0, len(tokens))

	for _, token := range tokens {
		token = hyperlinkPattern.ReplaceAllString(token, "")
		if token == "" || p.resources.StopWords.Contains(token) {
			continue
		}

		lemma := p.resources.Lemmatizer.Lemma(token)
		if lemma == "" {
			lemma = token
		}
		if p.resources.StopWords.Contains(lemma) {
			continue
		}

		kept = append(kept, lemma)
	}

	return kept
}

// JoinTokens joins tokens with a single space
func (p *ProcessingNodes) JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
