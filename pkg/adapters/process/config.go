package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProducerConfig describes one external generator command.
type ProducerConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of producers.yaml.
type ConfigFile struct {
	Producers []ProducerConfig `yaml:"producers" json:"producers"`
}

// LoadProducers reads a configuration file (YAML or JSON) and returns producers by name.
// A missing file yields an empty map.
func LoadProducers(path string) (map[string]ProducerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProducerConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read producers config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	producers := make(map[string]ProducerConfig, len(cfg.Producers))
	for _, p := range cfg.Producers {
		if p.Name == "" {
			continue
		}
		producers[p.Name] = p
	}
	return producers, nil
}
