package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTeams is the seed list used when TEAMS_FILE is not set.
var DefaultTeams = []string{
	"Media Team",
	"Coordination Team",
	"Logistics Support Team",
	"Project Management",
}

type teamsFile struct {
	Teams []string `yaml:"teams" validate:"required,min=1,dive,required"`
}

// LoadTeams reads the team seed list from a YAML file of the form
//
//	teams:
//	  - Media Team
//	  - Coordination Team
func LoadTeams(path string) ([]string, error) {
	if path == "" {
		return DefaultTeams, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadTeams: cannot read %s: %w", path, err)
	}

	var file teamsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config.LoadTeams: cannot parse %s: %w", path, err)
	}

	for i := range file.Teams {
		file.Teams[i] = strings.TrimSpace(file.Teams[i])
	}

	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("config.LoadTeams: validation failed: %w", err)
	}

	return file.Teams, nil
}
