package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a document encoding.
type Format string

const (
	// FormatYAML is YAML, possibly with several "---" separated documents.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON object or an array of objects.
	FormatJSON Format = "json"
	// FormatTOML is a single TOML document.
	FormatTOML Format = "toml"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
