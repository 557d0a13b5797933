// Package persona loads the assistant's system instruction from a Markdown file.
package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persona is a named system instruction.
type Persona struct {
	Name        string
	Description string
	Instruction string
	Path        string
}

// personaFrontMatter mirrors the YAML front matter of a persona file.
type personaFrontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Load reads a persona file: YAML front matter followed by the instruction body.
func Load(path string) (*Persona, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}

	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(fm.Name) == "" {
		return nil, fmt.Errorf("parse %s: missing front matter name", path)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("parse %s: empty instruction body", path)
	}

	return &Persona{
		Name:        strings.TrimSpace(fm.Name),
		Description: strings.TrimSpace(fm.Description),
		Instruction: body,
		Path:        path,
	}, nil
}

func splitFrontMatter(content []byte) (personaFrontMatter, string, error) {
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return personaFrontMatter{}, "", fmt.Errorf("missing YAML front matter")
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return personaFrontMatter{}, "", fmt.Errorf("unterminated YAML front matter")
	}

	var fm personaFrontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return personaFrontMatter{}, "", err
	}
	return fm, strings.Join(lines[end+1:], "\n"), nil
}
