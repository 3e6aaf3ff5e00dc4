package linguistics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

var (
	sharedLemmatizer *GolemLemmatizer
	lemmatizerErr    error
	lemmatizerOnce   sync.Once
)

func loadLemmatizer(t *testing.T) *GolemLemmatizer {
	t.Helper()
	lemmatizerOnce.Do(func() {
		sharedLemmatizer, lemmatizerErr = NewGolemLemmatizer()
	})
	require.NoError(t, lemmatizerErr)
	return sharedLemmatizer
}

func TestLoadStopWords_NLTK(t *testing.T) {
	sw, err := LoadStopWords(StopWordsNLTK)
	require.NoError(t, err)

	set, ok := sw.(*WordSet)
	require.True(t, ok)
	assert.Equal(t, 179, set.Len())
	assert.Equal(t, "nltk", set.Source())

	for _, w := range []string{"the", "is", "on", "not", "can", "don", "don't", "s", "t"} {
		assert.True(t, sw.Contains(w), "expected %q to be a stop word", w)
	}
	for _, w := range []string{"cat", "dont", "urgent", "The", ""} {
		assert.False(t, sw.Contains(w), "expected %q not to be a stop word", w)
	}
}

func TestLoadStopWords_DefaultIsNLTK(t *testing.T) {
	sw, err := LoadStopWords("")
	require.NoError(t, err)
	assert.Equal(t, StopWordsNLTK, sw.Source())
}

func TestLoadStopWords_Snowball(t *testing.T) {
	sw, err := LoadStopWords(StopWordsSnowball)
	require.NoError(t, err)

	assert.Equal(t, "snowball", sw.Source())
	assert.True(t, sw.Contains("the"))
	assert.True(t, sw.Contains("is"))
	assert.False(t, sw.Contains("cat"))
}

func TestLoadStopWords_UnknownSource(t *testing.T) {
	_, err := LoadStopWords("klingon")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeResourceUnavailable))
}

func TestWordSet_Words(t *testing.T) {
	set := NewWordSet("custom", "b", " a ", "", "b")
	assert.Equal(t, []string{"a", "b"}, set.Words())
	assert.Equal(t, 2, set.Len())
}

func TestParseWordList_SkipsCommentsAndBlanks(t *testing.T) {
	set, err := parseWordList("test", "# header\n\nfoo\n  bar  \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, set.Words())

	_, err = parseWordList("empty", "\n# only a comment\n")
	assert.Error(t, err)
}

func TestTreebankTokenizer_Tokenize(t *testing.T) {
	tokenizer := NewTreebankTokenizer()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
		{
			name:     "plain words",
			input:    "the cat is on the mat",
			expected: []string{"the", "cat", "is", "on", "the", "mat"},
		},
		{
			name:     "extra whitespace",
			input:    "  forest \t fire\nnear  ",
			expected: []string{"forest", "fire", "near"},
		},
		{
			name:     "numbers stay separate tokens",
			input:    "13000 people evacuated",
			expected: []string{"13000", "people", "evacuated"},
		},
		{
			name:     "cannot is two tokens",
			input:    "i cannot believe",
			expected: []string{"i", "can", "not", "believe"},
		},
		{
			name:     "fused forms",
			input:    "gonna gotta gimme lemme",
			expected: []string{"gon", "na", "got", "ta", "gim", "me", "lem", "me"},
		},
		{
			name:     "wanna only before whitespace",
			input:    "wanna go wanna",
			expected: []string{"wan", "na", "go", "wanna"},
		},
		{
			name:     "no split inside longer words",
			input:    "scannot gonnarrhea",
			expected: []string{"scannot", "gonnarrhea"},
		},
		{
			name:     "unicode quotes split off",
			input:    "“fire” ‘here’",
			expected: []string{"“", "fire", "”", "‘", "here", "’"},
		},
		{
			name:     "unicode whitespace",
			input:    "storm warning　now\x1cend",
			expected: []string{"storm", "warning", "now", "end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizer.Tokenize(tt.input))
		})
	}
}

func TestGolemLemmatizer_Lemma(t *testing.T) {
	lemmatizer := loadLemmatizer(t)

	tests := map[string]string{
		"cats":   "cat",
		"dogs":   "dog",
		"houses": "house",
		"cat":    "cat",
		"zxqvbn": "zxqvbn",
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, lemmatizer.Lemma(input))
		})
	}
}

func TestGolemLemmatizer_LemmaIsFixedPoint(t *testing.T) {
	lemmatizer := loadLemmatizer(t)

	words := []string{"running", "flooded", "fires", "people", "children", "buildings",
		"ran", "better", "earthquakes", "evacuated", "wildfires", "leaves", "http"}

	for _, w := range words {
		lemma := lemmatizer.Lemma(w)
		assert.Equal(t, lemma, lemmatizer.Lemma(lemma), "lemma of %q is not stable", w)
		assert.True(t, lemma == w || isSingleLowerWord(lemma))
	}
}

func TestIsSingleLowerWord(t *testing.T) {
	assert.True(t, isSingleLowerWord("fire"))
	assert.True(t, isSingleLowerWord("niño"))
	assert.False(t, isSingleLowerWord(""))
	assert.False(t, isSingleLowerWord("ice cream"))
	assert.False(t, isSingleLowerWord("Paris"))
	assert.False(t, isSingleLowerWord("o'clock"))
	assert.False(t, isSingleLowerWord("httpd"))
}

func TestLoadEnglish(t *testing.T) {
	english, err := LoadEnglish(Options{StopWords: StopWordsSnowball})
	require.NoError(t, err)

	resources := english.Resources()
	require.NoError(t, resources.Validate())
	assert.Equal(t, "snowball", english.StopWords.Source())
}

func TestLoadEnglish_BadStopWords(t *testing.T) {
	_, err := LoadEnglish(Options{StopWords: "nope"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeResourceUnavailable))
}
