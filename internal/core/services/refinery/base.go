package refinery

// BaseRefinery defines the interface that all refinery implementations must follow
// This enables a plugin architecture where different cleaning strategies can be swapped
type BaseRefinery interface {
	// Process cleans a single text string through the refinery pipeline
	Process(text string) string

	// GetVersion returns the version identifier (e.g., "v1")
	GetVersion() string

	// GetName returns a human-readable name
	GetName() string

	// GetDescription returns what this refinery does
	GetDescription() string

	// GetPipelineSteps returns the list of processing steps in order
	GetPipelineSteps() []string
}

// ProcessingStep represents a single text transformation function
type ProcessingStep func(string) string

// TokenStep transforms a token sequence
type TokenStep func([]string) []string
