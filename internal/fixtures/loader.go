// internal/fixtures/loader.go
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed data/*
var embedded embed.FS

// Load reads fixtures from dir, or from the embedded defaults when dir is empty.
func Load(dir string) (*Store, error) {
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded fixtures: %w", err)
		}
		return LoadFS(sub)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures path %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads each fixture set from <name>.json, <name>.yaml or <name>.yml.
// Only the product set is mandatory.
func LoadFS(fsys fs.FS) (*Store, error) {
	var data Data

	sets := []struct {
		name     string
		target   interface{}
		required bool
	}{
		{"product", &data.Products, true},
		{"ownership", &data.Ownership, false},
		{"certificate", &data.Certificates, false},
		{"transaction", &data.Transactions, false},
		{"repairs", &data.Repairs, false},
		{"sustainability", &data.Sustainability, false},
		{"badges", &data.Badges, false},
	}

	for _, set := range sets {
		found, err := readSet(fsys, set.name, set.target)
		if err != nil {
			return nil, err
		}
		if !found {
			if set.required {
				return nil, fmt.Errorf("fixture set %q not found", set.name)
			}
			logrus.WithField("fixture", set.name).Debug("Fixture set not present, using empty list")
		}
	}

	if len(data.Products) == 0 {
		return nil, errors.New("fixture set \"product\" is empty")
	}

	return New(data), nil
}

func readSet(fsys fs.FS, name string, target interface{}) (bool, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		file := name + ext
		raw, err := fs.ReadFile(fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to read fixture %s: %w", file, err)
		}

		if path.Ext(file) != ".json" {
			raw, err = yamlToJSON(raw)
			if err != nil {
				return false, fmt.Errorf("failed to parse fixture %s: %w", file, err)
			}
		}

		if err := json.Unmarshal(raw, target); err != nil {
			return false, fmt.Errorf("failed to decode fixture %s: %w", file, err)
		}
		return true, nil
	}
	return false, nil
}

// yamlToJSON re-encodes a YAML document so the json struct tags drive decoding.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
