package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type neighborhoodsFile struct {
	Neighborhoods []Neighborhood `yaml:"neighborhoods"`
}

// LoadNeighborhoods reads the neighborhood list from a YAML file. An empty
// path returns DefaultNeighborhoods. Entries without an explicit query use
// their name as the upstream search term.
func LoadNeighborhoods(path string) ([]Neighborhood, error) {
	if path == "" {
		return DefaultNeighborhoods, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read neighborhoods file: %v", err)
	}

	var parsed neighborhoodsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse neighborhoods file: %v", err)
	}

	if len(parsed.Neighborhoods) == 0 {
		return nil, fmt.Errorf("neighborhoods file %s has no entries", path)
	}

	for i := range parsed.Neighborhoods {
		if parsed.Neighborhoods[i].Query == "" {
			parsed.Neighborhoods[i].Query = parsed.Neighborhoods[i].Name
		}
	}
	return parsed.Neighborhoods, nil
}
