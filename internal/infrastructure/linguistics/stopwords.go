package linguistics

import (
	"bufio"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// Stop-word sources accepted by LoadStopWords
const (
	StopWordsNLTK     = "nltk"
	StopWordsSnowball = "snowball"
)

//go:embed data/stopwords_en.txt
var nltkEnglishStopWords string

// StopWords is a read-only stop-word lookup
type StopWords interface {
	Contains(word string) bool
	Source() string
}

// WordSet is an immutable set of stop words
type WordSet struct {
	source string
	words  map[string]struct{}
}

// NewWordSet builds a set from explicit words; blank entries are ignored
func NewWordSet(source string, words ...string) *WordSet {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return &WordSet{source: source, words: set}
}

// Contains reports whether word is in the set
func (s *WordSet) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Source names where the words came from
func (s *WordSet) Source() string {
	return s.source
}

// Len returns the number of words
func (s *WordSet) Len() int {
	return len(s.words)
}

// Words returns the sorted contents
func (s *WordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// SnowballStopWords looks words up in the Snowball English stop list
type SnowballStopWords struct{}

func (SnowballStopWords) Contains(word string) bool {
	return english.IsStopWord(word)
}

func (SnowballStopWords) Source() string {
	return StopWordsSnowball
}

// LoadStopWords returns the English stop words for the named source
func LoadStopWords(source string) (StopWords, error) {
	switch source {
	case "", StopWordsNLTK:
		set, err := parseWordList(StopWordsNLTK, nltkEnglishStopWords)
		if err != nil {
			return nil, apperrors.ResourceUnavailable("stop words", err)
		}
		return set, nil
	case StopWordsSnowball:
		return SnowballStopWords{}, nil
	default:
		return nil, apperrors.ResourceUnavailable("stop words",
			fmt.Errorf("unknown stop-word source %q", source))
	}
}

func parseWordList(source, data string) (*WordSet, error) {
	var words []string

	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("stop-word list %q is empty", source)
	}

	return NewWordSet(source, words...), nil
}
