package loader

import (
	"path/filepath"
	"strings"
)

// Format is the encoding of a graph description file.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatYAML
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "YAML"
	case FormatJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// DetectFormat determines the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}
