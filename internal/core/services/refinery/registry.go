package refinery

import (
	"fmt"
	"sort"
	"sync"
)

// RefineryFactory is a function type that creates a refinery instance
type RefineryFactory func(resources *Resources) (BaseRefinery, error)

// Registry manages all available refinery implementations
type Registry struct {
	mu         sync.RWMutex
	refineries map[string]RefineryFactory
	aliases    map[string]string
}

// Global registry instance. It holds factories only; resources are always passed in.
var globalRegistry = &Registry{
	refineries: make(map[string]RefineryFactory),
	aliases:    make(map[string]string),
}

// Register adds a refinery to the registry with optional aliases
func Register(version string, factory RefineryFactory, aliases ...string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.refineries[version] = factory

	for _, alias := range aliases {
		globalRegistry.aliases[alias] = version
	}
}

// Get retrieves a refinery factory by version or alias
func Get(identifier string) (RefineryFactory, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	if version, exists := globalRegistry.aliases[identifier]; exists {
		identifier = version
	}

	factory, exists := globalRegistry.refineries[identifier]
	if !exists {
		return nil, fmt.Errorf("refinery '%s' not found. Available: %v", identifier, listLocked())
	}

	return factory, nil
}

// Create creates a new refinery instance
func Create(identifier string, resources *Resources) (BaseRefinery, error) {
	factory, err := Get(identifier)
	if err != nil {
		return nil, err
	}

	return factory(resources)
}

// ListAvailable returns a sorted list of all available refinery versions
func ListAvailable() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	return listLocked()
}

func listLocked() []string {
	versions := make([]string, 0, len(globalRegistry.refineries))
	for version := range globalRegistry.refineries {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}

// ListAvailableWithMetadata returns detailed information about all refineries
// that can be built with the given resources
func ListAvailableWithMetadata(resources *Resources) map[string]map[string]interface{} {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make(map[string]map[string]interface{})

	for version, factory := range globalRegistry.refineries {
		instance, err := factory(resources)
		if err != nil {
			continue
		}

		var versionAliases []string
		for alias, v := range globalRegistry.aliases {
			if v == version {
				versionAliases = append(versionAliases, alias)
			}
		}
		sort.Strings(versionAliases)

		result[version] = map[string]interface{}{
			"name":        instance.GetName(),
			"description": instance.GetDescription(),
			"aliases":     versionAliases,
			"steps":       instance.GetPipelineSteps(),
		}
	}

	return result
}

// init registers the default refineries
func init() {
	Register("v1", func(resources *Resources) (BaseRefinery, error) {
		r, err := NewEnglishRefinery(resources)
		if err != nil {
			return nil, err
		}
		return r, nil
	}, "english", "text_clean", "standard")
}
