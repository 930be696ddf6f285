package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawQuestion mirrors one record of the question bank export.
type RawQuestion struct {
	ID           string            `json:"id_questoes" yaml:"id_questoes"`
	Text         string            `json:"texto" yaml:"texto"`
	Subject      string            `json:"disciplina" yaml:"disciplina"`
	Alternatives AlternativesField `json:"alternativas" yaml:"alternativas"`
	Answer       string            `json:"gabarito" yaml:"gabarito"`
}

// AlternativesField holds the alternatives exactly as the source encodes them:
// free text, or a JSON object of option letter to text. Inline objects are kept
// as their JSON text so the normalizer sees a single representation.
type AlternativesField string

func (f *AlternativesField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*f = AlternativesField(text)
	default:
		*f = AlternativesField(trimmed)
	}
	return nil
}

func (f *AlternativesField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = AlternativesField(node.Value)
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("alternativas: unsupported yaml node at line %d", node.Line)
	}

	// Build the JSON object by hand so member order survives.
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, err := json.Marshal(node.Content[i].Value)
		if err != nil {
			return err
		}

		valueNode := node.Content[i+1]
		var value any = valueNode.Value
		if valueNode.Kind != yaml.ScalarNode {
			var decoded any
			if err := valueNode.Decode(&decoded); err != nil {
				return err
			}
			value = decoded
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}

		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	*f = AlternativesField(buf.String())
	return nil
}

// LoadFile reads a question bank from a .json or .yaml/.yml file.
func LoadFile(path string) ([]RawQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses a question bank. ext selects the format; anything that is not
// .yaml/.yml is treated as JSON.
func Decode(data []byte, ext string) ([]RawQuestion, error) {
	var questions []RawQuestion
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("decode yaml dataset: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("decode json dataset: %w", err)
		}
	}
	return questions, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
