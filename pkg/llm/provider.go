package llm

import "strings"

const modelSeparator = "/"

// Providers whose OpenAI compatible endpoint expects a bare model name.
var bareNameProviders = map[string]bool{
	"google": true,
	"gemini": true,
}

// ResolveModelID maps a configured alias to the identifier sent upstream.
// Aliases already in provider/model form pass through unchanged.
func ResolveModelID(alias string, cfg ModelConfig) string {
	model := strings.TrimSpace(alias)
	if strings.Contains(model, modelSeparator) {
		return model
	}

	name := strings.TrimSpace(cfg.ModelName)
	if name == "" {
		name = model
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || bareNameProviders[provider] || strings.Contains(name, modelSeparator) {
		return name
	}
	return provider + modelSeparator + name
}

// ParseModelID splits a fully qualified model string into provider and model name.
func ParseModelID(model string) (provider, name string) {
	parts := strings.SplitN(model, modelSeparator, 2)
	if len(parts) != 2 {
		return "", model
	}
	return parts[0], parts[1]
}
