// Package records reads and writes the export record files handed over by
// the declaration extractor.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/luabind/internal/binding"
)

// Format is a record file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	}
	return "yaml"
}

// File is one module's worth of records.
type File struct {
	Module  string                 `json:"module" yaml:"module" cbor:"module"`
	Records []binding.ExportRecord `json:"records" yaml:"records" cbor:"records"`
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("%s: unsupported record file extension %q", path, filepath.Ext(path))
}

// ModuleName is the default module name for a record file: its base name
// without extension.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads a record file. A missing module name defaults to ModuleName(path).
func Load(path string) (*File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(f.Module) == "" {
		f.Module = ModuleName(path)
	}
	return f, nil
}

// Decode parses record data. Both a {module, records} document and a bare
// list of records are accepted.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &f); err != nil {
			var list []binding.ExportRecord
			if listErr := cbor.Unmarshal(data, &list); listErr != nil {
				return nil, fmt.Errorf("decoding cbor records: %w", err)
			}
			f.Records = list
		}
	default:
		// JSON is decoded as YAML; the struct tags agree.
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("decoding %s records: %w", format, err)
		}
		if len(node.Content) == 0 {
			return &f, nil
		}
		doc := node.Content[0]
		target := any(&f)
		if doc.Kind == yaml.SequenceNode {
			target = &f.Records
		}
		if err := doc.Decode(target); err != nil {
			return nil, fmt.Errorf("decoding %s records: %w", format, err)
		}
	}
	return &f, nil
}

// Encode renders a record file. CBOR output uses the core deterministic
// encoding so equal files encode to equal bytes.
func Encode(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatCBOR:
		return CanonicalCBOR(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	}
	return yaml.Marshal(f)
}

// CanonicalCBOR encodes v with core deterministic CBOR options.
func CanonicalCBOR(v any) ([]byte, error) {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return mode.Marshal(v)
}
