// Package store persists the active program profile. Storage is single
// slot: saving a profile replaces whatever was there before.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ciscope/internal/model"
)

// ErrNoProfile is returned when no profile has been saved yet.
var ErrNoProfile = errors.New("no program profile saved")

// ProfileStore reads and writes the profile YAML file.
type ProfileStore struct {
	path string
}

// NewProfileStore stores the profile at path.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

// Save validates and writes the profile, replacing any existing one.
func (s *ProfileStore) Save(profile model.ProgramProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Load reads the active profile. ErrNoProfile when none exists.
func (s *ProfileStore) Load() (model.ProgramProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ProgramProfile{}, ErrNoProfile
		}
		return model.ProgramProfile{}, fmt.Errorf("load profile: %w", err)
	}
	var profile model.ProgramProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return model.ProgramProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return model.ProgramProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// Clear removes the stored profile. Clearing an empty store is not an error.
func (s *ProfileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
