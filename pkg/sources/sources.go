package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sources contains the watched-source registry and per-source adapters.

// Descriptor is one configured source entry loaded from the sources file.
type Descriptor struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Source pairs a configured descriptor with its resolved adapter.
type Source struct {
	Descriptor Descriptor
	Adapter    Adapter
}

// Registry holds the resolved sources. It is read-only after LoadRegistry.
type Registry struct {
	sources []Source
	idx     map[string]Source
}

type registryFile struct {
	Sources []Descriptor `json:"sources" yaml:"sources"`
}

// LoadRegistry loads the sources file and resolves each entry against the
// given adapters. A configured id with no adapter is a configuration error.
func LoadRegistry(path string, adapters ...Adapter) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	byID := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(a.ID()))
		if key == "" {
			continue
		}
		byID[key] = a
	}

	reg := &Registry{
		sources: make([]Source, 0, len(fileReg.Sources)),
		idx:     make(map[string]Source, len(fileReg.Sources)),
	}

	for i := range fileReg.Sources {
		d := sanitizeDescriptor(fileReg.Sources[i])
		if err := validateDescriptor(d); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[d.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", d.ID)
		}
		adapter, ok := byID[d.ID]
		if !ok {
			return nil, fmt.Errorf("no adapter registered for source %q", d.ID)
		}
		src := Source{Descriptor: d, Adapter: adapter}
		reg.sources = append(reg.sources, src)
		reg.idx[d.ID] = src
	}

	return reg, nil
}

// parseRegistry attempts to decode the sources file content.
func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeDescriptor(d Descriptor) Descriptor {
	d.ID = strings.ToLower(strings.TrimSpace(d.ID))
	d.Name = strings.TrimSpace(d.Name)
	d.URL = strings.TrimSpace(d.URL)
	if d.Name == "" {
		d.Name = d.ID
	}
	return d
}

func validateDescriptor(d Descriptor) error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	if d.URL == "" {
		return fmt.Errorf("url is required for source %q", d.ID)
	}
	return nil
}

// All returns the configured sources in file order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source entry for the given id, if configured.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	src, ok := r.idx[strings.ToLower(strings.TrimSpace(id))]
	return src, ok
}

// IDs returns the configured source ids in file order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s.Descriptor.ID)
	}
	return out
}

// BuiltinAdapters returns the adapters known to this build.
func BuiltinAdapters() []Adapter {
	return []Adapter{
		NewAWSAdapter(),
		NewAzureAdapter(),
		NewGCPAdapter(),
		NewOracleAdapter(),
	}
}
