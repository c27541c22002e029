package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the loaded configuration for values that would make
// generation fail later on.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateSources()...)
	results = append(results, c.validateNatives()...)
	if c.Workers > 64 {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("workers=%d is unusually high", c.Workers),
		})
	}
	return results
}

// Err folds error-level findings into a single error.
func (c Config) Err() error {
	var messages []string
	for _, r := range c.Validate() {
		if r.Level == "error" {
			messages = append(messages, r.Message)
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func (c Config) validateSources() []ValidationResult {
	var results []ValidationResult
	sources := []struct {
		name     string
		value    string
		template bool
	}{
		{"version_index", c.Sources.VersionIndex, false},
		{"version", c.Sources.Version, true},
		{"fabric_loader", c.Sources.FabricLoader, true},
		{"intermediary", c.Sources.Intermediary, false},
		{"forge", c.Sources.Forge, true},
		{"asset_host", c.Sources.AssetHost, false},
		{"libraries", c.Sources.Libraries, false},
	}
	for _, src := range sources {
		if src.value == "" {
			continue
		}
		u, err := url.Parse(Expand(src.value, "0"))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("sources.%s %q is not an http(s) url", src.name, src.value),
			})
			continue
		}
		if src.template && !strings.Contains(src.value, "{version}") {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("sources.%s has no {version} placeholder", src.name),
			})
		}
	}
	return results
}

func (c Config) validateNatives() []ValidationResult {
	var results []ValidationResult
	for _, suffix := range c.Natives.Suffixes {
		if !strings.HasPrefix(suffix, ".") {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("natives suffix %q must start with a dot", suffix),
			})
		}
	}
	return results
}
