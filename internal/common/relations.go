package common

import (
	"fmt"
	"os"
	"path/filepath"

	"baas-admin-go/internal/view"

	"gopkg.in/yaml.v2"
)

type RelationsConfig struct {
	Relations []view.RelationSpec `yaml:"relations"`
}

// LoadRelationConfig reads the tracked relations from a YAML file. Relative
// paths resolve against the working directory.
func LoadRelationConfig(relationsFile string) ([]view.RelationSpec, error) {
	var relationsPath string
	if filepath.IsAbs(relationsFile) {
		relationsPath = relationsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		relationsPath = filepath.Join(wd, relationsFile)
	}

	data, err := os.ReadFile(relationsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", relationsFile, err)
	}

	var config RelationsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", relationsFile, err)
	}

	for i, rel := range config.Relations {
		if rel.Name == "" {
			return nil, fmt.Errorf("relation at index %d missing name", i)
		}
		if rel.Denormalize && len(rel.FallbackHeaders) == 0 {
			return nil, fmt.Errorf("relation %s is denormalized but has no fallback_headers", rel.Name)
		}
	}

	return config.Relations, nil
}

// LoadRegistry loads the relations file and builds a registry from it.
func LoadRegistry(relationsFile string) (*view.Registry, error) {
	specs, err := LoadRelationConfig(relationsFile)
	if err != nil {
		return nil, err
	}
	return view.NewRegistry(specs)
}
