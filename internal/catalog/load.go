package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrEmptyFilename is returned when a catalog file lists a document without a filename.
var ErrEmptyFilename = errors.New("catalog: document filename is empty")

type catalogFile struct {
	Documents []Document `yaml:"documents" toml:"documents"`
}

// Load reads a catalog file. The format follows the extension:
// .yaml/.yml for YAML and .toml for TOML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var f catalogFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("catalog: parse yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("catalog: parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("catalog: unsupported file extension %q", ext)
	}

	for i, d := range f.Documents {
		if strings.TrimSpace(d.Filename) == "" {
			return nil, fmt.Errorf("document #%d: %w", i+1, ErrEmptyFilename)
		}
	}
	return New(f.Documents...), nil
}
