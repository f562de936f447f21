package liveboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogVersion is the current tool catalog format version.
const CatalogVersion = "1"

// ToolCatalog is the YAML document listing tool definitions. It is exported
// for prompting and read back to override descriptions.
type ToolCatalog struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Tools   []ToolDefinition `json:"tools" yaml:"tools"`
	Source  string           `json:"-" yaml:"-"`
}

// Catalog snapshots the registry.
func (r *ToolRegistry) Catalog() *ToolCatalog {
	return &ToolCatalog{
		Version: CatalogVersion,
		Name:    "liveboard",
		Tools:   r.Definitions(),
	}
}

// LoadCatalogFile reads a catalog and applies it to the registry.
func (r *ToolRegistry) LoadCatalogFile(path string) (*ToolCatalog, error) {
	doc, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	if err := r.ApplyCatalog(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ApplyCatalog overrides tool and parameter descriptions. Tool names, the
// parameter set and strictness are fixed and cannot be changed here.
func (r *ToolRegistry) ApplyCatalog(doc *ToolCatalog) error {
	if doc == nil {
		return errors.New("liveboard: catalog document is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := make(map[string]ToolDefinition, len(doc.Tools))
	for _, override := range doc.Tools {
		def, ok := r.definitions[override.Name]
		if !ok {
			return fmt.Errorf("liveboard: catalog %s overrides unknown tool %s", doc.Source, override.Name)
		}
		if override.Description != "" {
			def.Description = override.Description
		}
		params := append([]ToolParameter(nil), def.Parameters...)
		for _, p := range override.Parameters {
			idx := parameterIndex(params, p.Name)
			if idx < 0 {
				return fmt.Errorf("liveboard: catalog %s adds unknown parameter %s.%s", doc.Source, override.Name, p.Name)
			}
			if p.Description != "" {
				params[idx].Description = p.Description
			}
		}
		def.Parameters = params
		updated[def.Name] = def
	}
	for name, def := range updated {
		r.definitions[name] = def
	}
	return nil
}

func parameterIndex(params []ToolParameter, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// ReadCatalog loads a catalog file without applying it.
func ReadCatalog(path string) (*ToolCatalog, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("liveboard: open catalog %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("liveboard: decode catalog %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCatalog reads a catalog from any reader. Unknown fields are errors.
func DecodeCatalog(r io.Reader) (*ToolCatalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ToolCatalog
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("liveboard: catalog is empty")
		}
		return nil, fmt.Errorf("liveboard: parse catalog: %w", err)
	}
	if doc.Version == "" {
		doc.Version = CatalogVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeCatalog writes doc as YAML.
func EncodeCatalog(w io.Writer, doc *ToolCatalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("liveboard: encode catalog: %w", err)
	}
	return enc.Close()
}

// Validate checks the version and that tool names are present and unique.
func (doc *ToolCatalog) Validate() error {
	if doc.Version != CatalogVersion {
		return fmt.Errorf("liveboard: unsupported catalog version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Tools))
	for idx, tool := range doc.Tools {
		if tool.Name == "" {
			return fmt.Errorf("liveboard: catalog tool at index %d is missing name", idx)
		}
		if _, exists := seen[tool.Name]; exists {
			return fmt.Errorf("liveboard: catalog duplicates tool %s", tool.Name)
		}
		seen[tool.Name] = struct{}{}
	}
	return nil
}
