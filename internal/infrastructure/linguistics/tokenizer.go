package linguistics

import (
	"regexp"
	"strings"
	"unicode"
)

// quoteMarks are split off as their own tokens
var quoteMarks = regexp.MustCompile(`[«“‘„»”’]`)

// fusedForms are written as one word but tokenized as two ("cannot" -> "can not")
var fusedForms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(can)(not)\b`),
	regexp.MustCompile(`(?i)\b(gim)(me)\b`),
	regexp.MustCompile(`(?i)\b(gon)(na)\b`),
	regexp.MustCompile(`(?i)\b(got)(ta)\b`),
	regexp.MustCompile(`(?i)\b(lem)(me)\b`),
}

// wanna is only split when whitespace follows; whitespace is the same set
// isSeparator splits on
var wannaForm = regexp.MustCompile(`(?i)\b(wan)(na)([\t\n\v\f\r\x1c-\x1f\x{85}\p{Z}])`)

// TreebankTokenizer follows the Penn Treebank word conventions for text
// that has already had its ASCII punctuation removed. It holds no state.
type TreebankTokenizer struct{}

// NewTreebankTokenizer creates a tokenizer
func NewTreebankTokenizer() *TreebankTokenizer {
	return &TreebankTokenizer{}
}

// Tokenize splits text into word tokens
func (t *TreebankTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = quoteMarks.ReplaceAllString(text, " $0 ")
	for _, re := range fusedForms {
		text = re.ReplaceAllString(text, " ${1} ${2} ")
	}
	text = wannaForm.ReplaceAllString(text, " ${1} ${2}${3}")

	return strings.FieldsFunc(text, isSeparator)
}

// isSeparator matches every rune a reader would treat as whitespace,
// including the ASCII information separators
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
