package summary

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is a summary encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported encodings
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported summary format %q", name)
	}
}

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Encode renders s in format f
func Encode(s *Summary, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return sonic.ConfigStd.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatTOML:
		return toml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported summary format %q", f)
	}
}
