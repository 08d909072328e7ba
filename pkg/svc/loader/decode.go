package loader

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/pelletier/go-toml/v2"
	"sigs.k8s.io/yaml"
)

// yamlSeparator matches a "---" document separator line.
var yamlSeparator = regexp.MustCompile(`(?m)^---[ \t]*(#.*)?$`)

// rawDocument is one decoded document before validation.
type rawDocument struct {
	index int
	value any
}

func decodeRaw(data []byte, format Format) ([]rawDocument, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeYAML(data []byte) ([]rawDocument, error) {
	var docs []rawDocument

	for index, chunk := range yamlSeparator.Split(string(data), -1) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		jsonData, err := yaml.YAMLToJSONStrict([]byte(chunk))
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", index, err)
		}

		var value any

		err = json.Unmarshal(jsonData, &value)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", index, err)
		}

		// comment-only chunks decode to null
		if value == nil {
			continue
		}

		docs = append(docs, rawDocument{index: index, value: value})
	}

	return docs, nil
}

func decodeJSON(data []byte) ([]rawDocument, error) {
	var value any

	err := json.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	items, ok := value.([]any)
	if !ok {
		return []rawDocument{{index: 0, value: value}}, nil
	}

	docs := make([]rawDocument, 0, len(items))
	for index, item := range items {
		docs = append(docs, rawDocument{index: index, value: item})
	}

	return docs, nil
}

func decodeTOML(data []byte) ([]rawDocument, error) {
	var value map[string]any

	err := toml.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("invalid toml: %w", err)
	}

	normalized, err := tree.Normalize(value)
	if err != nil {
		return nil, err
	}

	return []rawDocument{{index: 0, value: normalized}}, nil
}
