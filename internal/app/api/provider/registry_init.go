package provider

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderCreator builds a provider from its `settings` block
type ProviderCreator func(settings map[string]interface{}) (TranscriptionProvider, error)

// providerCreators stores provider creation functions keyed by type
var (
	providerCreators = make(map[string]ProviderCreator)
	creatorsMutex    sync.RWMutex
)

// RegisterProviderType registers a provider creator function. Backend
// packages call it from init().
func RegisterProviderType(providerType string, creator ProviderCreator) {
	creatorsMutex.Lock()
	defer creatorsMutex.Unlock()
	providerCreators[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	creatorsMutex.RLock()
	defer creatorsMutex.RUnlock()

	creator, ok := providerCreators[providerType]
	if !ok {
		return nil, fmt.Errorf("provider type %s not registered", providerType)
	}
	return creator, nil
}

// CreateProvider builds a provider of the given registered type.
func CreateProvider(providerType string, settings map[string]interface{}) (TranscriptionProvider, error) {
	creator, err := GetProviderCreator(providerType)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return creator(settings)
}

// ListRegisteredProviders returns all registered provider types, sorted
func ListRegisteredProviders() []string {
	creatorsMutex.RLock()
	defer creatorsMutex.RUnlock()

	types := make([]string, 0, len(providerCreators))
	for providerType := range providerCreators {
		types = append(types, providerType)
	}
	sort.Strings(types)
	return types
}

// Setting helpers shared by the backend creators. YAML numbers arrive as int
// and JSON numbers as float64, so both are accepted.

func StringSetting(settings map[string]interface{}, key string) string {
	if v, ok := settings[key].(string); ok {
		return v
	}
	return ""
}

func FloatSetting(settings map[string]interface{}, key string) (float64, bool) {
	switch v := settings[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func IntSetting(settings map[string]interface{}, key string) (int, bool) {
	f, ok := FloatSetting(settings, key)
	return int(f), ok
}

func BoolSetting(settings map[string]interface{}, key string) bool {
	v, _ := settings[key].(bool)
	return v
}
