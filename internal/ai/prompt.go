package ai

import (
	"fmt"
	"os"
)

// DefaultTemplatePath is the system-wide instruction template.
const DefaultTemplatePath = "/etc/ponopush/ponopush.conf"

// LoadTemplate reads the instruction template that precedes every diff.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		path = DefaultTemplatePath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template: %w", err)
	}
	return string(data), nil
}

// BuildPrompt appends the diff to the template verbatim.
func BuildPrompt(template, diff string) string {
	return template + diff
}
