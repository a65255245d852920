package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadProfileMissingFileUsesDefaults(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(profile, defaultProfile) {
		t.Errorf("expected defaults, got %+v", profile)
	}
}

func TestLoadProfileFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genie.yml")
	data := []byte(`title: Sales Analytics
description: Questions about the sales pipeline.
suggestions:
  - Which region grew fastest last quarter?
  - Show monthly revenue by product
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Title != "Sales Analytics" {
		t.Errorf("unexpected title: %q", profile.Title)
	}
	if len(profile.Suggestions) != 2 || profile.Suggestions[0] != "Which region grew fastest last quarter?" {
		t.Errorf("unexpected suggestions: %v", profile.Suggestions)
	}
}

func TestLoadProfilePartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genie.yml")
	if err := os.WriteFile(path, []byte("description: Only a description.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Title != defaultProfile.Title {
		t.Errorf("expected default title, got %q", profile.Title)
	}
	if profile.Description != "Only a description." {
		t.Errorf("unexpected description: %q", profile.Description)
	}
	if len(profile.Suggestions) != len(defaultProfile.Suggestions) {
		t.Errorf("expected default suggestions, got %v", profile.Suggestions)
	}
}

func TestLoadProfileMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genie.yml")
	if err := os.WriteFile(path, []byte("title: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if profile.Title != defaultProfile.Title {
		t.Errorf("expected defaults on parse failure, got %+v", profile)
	}
}
