package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the space profile shown by the UI: welcome copy and the
// suggestion prompts offered before the first question.
type Profile struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Suggestions []string `yaml:"suggestions" json:"suggestions"`
}

var defaultProfile = Profile{
	Title:       "Genie Space",
	Description: "Ask questions about your data in natural language.",
	Suggestions: []string{
		"What tables are there and how are they connected? Give me a short summary.",
		"Explain the dataset",
	},
}

// LoadProfile reads the yaml space profile. A missing file is not an
// error; the built-in defaults are returned instead.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultProfile, nil
		}
		return defaultProfile, err
	}

	profile := defaultProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return defaultProfile, err
	}

	if profile.Title == "" {
		profile.Title = defaultProfile.Title
	}
	if len(profile.Suggestions) == 0 {
		profile.Suggestions = defaultProfile.Suggestions
	}

	return profile, nil
}
