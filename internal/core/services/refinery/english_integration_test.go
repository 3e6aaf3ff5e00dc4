package refinery_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/linguistics"
)

var (
	englishOnce sync.Once
	english     *linguistics.English
	englishErr  error
)

func englishPipeline(t *testing.T) *refinery.Pipeline {
	t.Helper()
	englishOnce.Do(func() {
		english, englishErr = linguistics.LoadEnglish(linguistics.Options{})
	})
	if englishErr != nil {
		t.Fatalf("LoadEnglish() error = %v", englishErr)
	}

	pipeline, err := refinery.NewPipeline("english", english.Resources())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return pipeline
}

// TestEnglishPipeline_RealResources runs the pipeline with the shipped dictionaries
func TestEnglishPipeline_RealResources(t *testing.T) {
	if testing.Short() {
		t.Skip("loading the lemmatizer dictionary is slow")
	}
	pipeline := englishPipeline(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "stop words and plural",
			input:    "the cats are on the mat",
			expected: "cat mat",
		},
		{
			name:     "link and punctuation",
			input:    "Dogs!!! http://t.co/abc",
			expected: "dog",
		},
		{
			name:     "only stop words",
			input:    "The IS on",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pipeline.CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanText(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestEnglishPipeline_RealResourcesIdempotent cleans already cleaned tweets again
func TestEnglishPipeline_RealResourcesIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("loading the lemmatizer dictionary is slow")
	}
	pipeline := englishPipeline(t)

	tweets := []string{
		"Our Deeds are the Reason of this #earthquake May ALLAH Forgive us all",
		"Forest fire near La Ronge Sask. Canada",
		"All residents asked to 'shelter in place' are being notified by officers.",
		"13,000 people receive #wildfires evacuation orders in California",
		"Just got sent this photo from Ruby #Alaska as smoke from #wildfires pours into a school",
		"I cannot believe it, we're gonna need a bigger boat http://t.co/lHYXEOHY6C",
		"“Flooding” in the streets… wanna see? https://t.co/YAo1e0xngw",
		"@bbcmtd Wholesale Markets ablaze http://t.co/lHYXEOHY6C",
		"What's up man?",
		"Leaves were falling; the children ran faster and better",
		"HTTP://EXAMPLE.COM/x alert",
		"Visit Http://site.org now",
		"h.ttpfoo bar",
		"BREAKING: Wildfires HTTPS://T.CO/AbC near town",
	}

	for _, tweet := range tweets {
		once := pipeline.CleanText(tweet)
		twice := pipeline.CleanText(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", tweet, once, twice)
		}
		if strings.Contains(once, "http") {
			t.Errorf("link survived in %q", once)
		}
		if once != strings.ToLower(once) {
			t.Errorf("output %q is not lowercase", once)
		}
	}
}
