package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file. Only the area and
// window can be set here; everything else comes from the environment.
type fileConfig struct {
	CenterLatitude  *float64 `yaml:"center_latitude"`
	CenterLongitude *float64 `yaml:"center_longitude"`
	Radius          *float64 `yaml:"radius"`
	StartMonth      string   `yaml:"start_month"`
	EndMonth        string   `yaml:"end_month"`
	OutputDirectory string   `yaml:"output_directory"`
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	return fc, nil
}
