package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
)

// Formats lists every supported format, text first.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML, FormatCSV}

// ErrTextNotReadable is returned when asked to read a text export.
// Text goes through the parser instead.
var ErrTextNotReadable = errors.New("text exports are imported with `mentor parse`")

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFormat accepts a format name case-insensitively, with "yml" and "txt"
// as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	default:
		if f.IsValid() {
			return f, nil
		}
		return "", fmt.Errorf("unknown format %q (valid: text, json, yaml, toml, csv)", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// Options tune encodings that need more than the document.
type Options struct {
	// Currency is written after each price in text exports.
	Currency string
}

// Write encodes doc to w.
func Write(w io.Writer, doc *Document, format Format, opts Options) error {
	switch format {
	case FormatText:
		return writeText(w, doc, opts.Currency)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, doc)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Read decodes a structured export.
func Read(r io.Reader, format Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatText:
		return nil, ErrTextNotReadable
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	case FormatCSV:
		menu, err := readCSV(r)
		if err != nil {
			return nil, err
		}
		doc.Menu = menu
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return doc, nil
}
