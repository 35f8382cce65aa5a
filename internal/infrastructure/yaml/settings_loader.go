package yaml

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Victor-armando18/storefront-pricing/internal/domain"
)

// LoadSettings reads a YAML settings document from path.
func LoadSettings(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Settings{}, err
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML into a generic tree and re-decodes it as JSON so
// decimal fields accept both numbers and quoted strings.
func ParseSettings(data []byte) (domain.Settings, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to parse settings yaml: %w", err)
	}
	if tree == nil {
		return domain.Settings{}, nil
	}

	asJSON, err := json.Marshal(tree)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to convert settings yaml: %w", err)
	}
	var settings domain.Settings
	if err := json.Unmarshal(asJSON, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}
