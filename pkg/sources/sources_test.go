package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - id: aws
    name: AWS
    url: https://status.aws.amazon.com/rss/all.rss
  - id: azure
    url: https://azure.status.microsoft/en-us/status/feed/
`)

	reg, err := LoadRegistry(path, BuiltinAdapters()...)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}
	if all[0].Descriptor.ID != "aws" || all[0].Adapter.ID() != "aws" {
		t.Fatalf("first entry resolved wrong: %+v", all[0].Descriptor)
	}
	// Name defaults to the id when absent.
	if all[1].Descriptor.Name != "azure" {
		t.Fatalf("expected defaulted name, got %q", all[1].Descriptor.Name)
	}

	if _, ok := reg.ByID("AWS"); !ok {
		t.Fatalf("ByID should be case-insensitive")
	}
}

func TestLoadRegistryUnknownAdapterFatal(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - id: hetzner
    url: https://status.hetzner.com/en.atom
`)

	_, err := LoadRegistry(path, BuiltinAdapters()...)
	if err == nil || !strings.Contains(err.Error(), "no adapter registered") {
		t.Fatalf("expected unknown adapter error, got %v", err)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - id: aws
    url: https://one.example/rss
  - id: aws
    url: https://two.example/rss
`)

	_, err := LoadRegistry(path, BuiltinAdapters()...)
	if err == nil || !strings.Contains(err.Error(), "duplicate source id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadRegistryEmptyFile(t *testing.T) {
	path := writeSourcesFile(t, "sources: []\n")

	if _, err := LoadRegistry(path, BuiltinAdapters()...); err == nil {
		t.Fatalf("expected error for empty sources file")
	}
}

func TestLoadRegistryMissingURL(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - id: gcp
`)

	_, err := LoadRegistry(path, BuiltinAdapters()...)
	if err == nil || !strings.Contains(err.Error(), "url is required") {
		t.Fatalf("expected missing url error, got %v", err)
	}
}
