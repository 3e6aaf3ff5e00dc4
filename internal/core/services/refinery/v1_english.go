package refinery

// EnglishRefinery implements the v1 cleaning pipeline for short English messages
// (tweets and similar) feeding a text classifier.
//
// Steps, in order:
//   - remove hyperlinks ("http" up to the next whitespace)
//   - delete ASCII punctuation without inserting spaces
//   - lowercase
//   - word-tokenize
//   - drop stop words, lemmatize the rest
//   - join with single spaces
type EnglishRefinery struct {
	nodes      *ProcessingNodes
	textSteps  []ProcessingStep
	tokenSteps []TokenStep
}

// NewEnglishRefinery creates the v1 refinery. It fails when a resource is missing.
func NewEnglishRefinery(resources *Resources) (*EnglishRefinery, error) {
	if err := resources.Validate(); err != nil {
		return nil, err
	}

	nodes := NewProcessingNodes(resources)

	return &EnglishRefinery{
		nodes: nodes,
		textSteps: []ProcessingStep{
			nodes.RemoveHyperlinks,
			nodes.RemovePunctuation,
			nodes.FoldCase,
		},
		tokenSteps: []TokenStep{
			nodes.FilterAndLemmatize,
		},
	}, nil
}

// Process cleans text through the fixed pipeline
func (r *EnglishRefinery) Process(text string) string {
	for _, step := range r.textSteps {
		text = step(text)
	}

	tokens := r.nodes.Tokenize(text)
	for _, step := range r.tokenSteps {
		tokens = step(tokens)
	}

	return r.nodes.JoinTokens(tokens)
}

// GetVersion returns the version identifier
func (r *EnglishRefinery) GetVersion() string {
	return "v1"
}

// GetName returns the human-readable name
func (r *EnglishRefinery) GetName() string {
	return "English Short Text Cleaning"
}

// GetDescription returns what this refinery does
func (r *EnglishRefinery) GetDescription() string {
	return "Removes links and punctuation, lowercases, tokenizes, drops English stop words and lemmatizes"
}

// GetPipelineSteps returns the list of processing steps
func (r *EnglishRefinery) GetPipelineSteps() []string {
	return []string{
		"remove_hyperlinks",
		"remove_punctuation",
		"fold_case",
		"tokenize",
		"filter_stop_words_and_lemmatize",
		"join_tokens",
	}
}
