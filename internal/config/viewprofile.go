// Package config loads the YAML view-profile file naming preset replay
// windows and map centers. Environment-sourced runtime settings are read
// in cmd/timelapse, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ViewProfile is one named preset an operator can point a replay at: a
// map center and zoom for the renderer, plus a default time window for
// the replay driver. The core never reads these. The server loads them at
// startup and logs how many it found; the control surface does not
// substitute them into ingest or replay requests.
type ViewProfile struct {
	Name              string  `yaml:"name"`
	CenterLat         float64 `yaml:"center_lat"`
	CenterLng         float64 `yaml:"center_lng"`
	Zoom              int     `yaml:"zoom"`
	TimeWindowSeconds int     `yaml:"time_window_seconds"`
}

type viewProfileFile struct {
	Profiles []ViewProfile `yaml:"profiles"`
}

// LoadViewProfiles reads and decodes the named YAML file. A missing file
// is not an error: profiles are an optional operator convenience, and
// the control surface works with none configured.
func LoadViewProfiles(path string) ([]ViewProfile, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read view profiles: %w", err)
	}

	var parsed viewProfileFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode view profiles: %w", err)
	}
	return parsed.Profiles, nil
}

// Find returns the profile with the given name, if present.
func Find(profiles []ViewProfile, name string) (ViewProfile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ViewProfile{}, false
}
