// Package linguistics binds the English stop-word list, word tokenizer and
// lemmatizer used by the cleaning refineries. Everything here is built once,
// never mutated afterwards, and safe to share between goroutines.
package linguistics

import (
	"log/slog"
	"time"

	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
)

// Options selects resource implementations
type Options struct {
	// StopWords is "nltk" (default) or "snowball"
	StopWords string

	Logger *slog.Logger
}

// English holds the loaded English resources
type English struct {
	StopWords  StopWords
	Tokenizer  *TreebankTokenizer
	Lemmatizer *GolemLemmatizer
}

// LoadEnglish loads every resource or fails; it never returns a partial set
func LoadEnglish(opts Options) (*English, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()

	stopWords, err := LoadStopWords(opts.StopWords)
	if err != nil {
		return nil, err
	}

	lemmatizer, err := NewGolemLemmatizer()
	if err != nil {
		return nil, err
	}

	logger.Debug("linguistic resources loaded",
		slog.String("stopwords", stopWords.Source()),
		slog.Duration("elapsed", time.Since(start)))

	return &English{
		StopWords:  stopWords,
		Tokenizer:  NewTreebankTokenizer(),
		Lemmatizer: lemmatizer,
	}, nil
}

// Resources exposes the loaded set in the form refineries are built with
func (e *English) Resources() *refinery.Resources {
	return &refinery.Resources{
		StopWords:  e.StopWords,
		Tokenizer:  e.Tokenizer,
		Lemmatizer: e.Lemmatizer,
	}
}
