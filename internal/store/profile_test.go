package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ppiankov/ciscope/internal/model"
)

func TestProfileStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	in := model.ProgramProfile{
		ProgramName: "AZ-CLDN18-ADC",
		Target:      "CLDN18.2",
		Indication:  "Gastric cancer, 2L+",
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out != in {
		t.Errorf("Round trip mismatch: %+v != %+v", out, in)
	}
}

func TestProfileStore_ReplaceOnSave(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	if err := s.Save(model.ProgramProfile{ProgramName: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(model.ProgramProfile{ProgramName: "second"}); err != nil {
		t.Fatal(err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.ProgramName != "second" {
		t.Errorf("Expected single-slot replace, got %q", out.ProgramName)
	}
}

func TestProfileStore_LoadMissing(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	if _, err := s.Load(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Expected ErrNoProfile, got %v", err)
	}
}

func TestProfileStore_SaveRejectsInvalid(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	if err := s.Save(model.ProgramProfile{}); err == nil {
		t.Error("Expected validation error for missing program name")
	}
}

func TestProfileStore_ClearIsIdempotent(t *testing.T) {
	s := NewProfileStore(filepath.Join(t.TempDir(), "profile.yaml"))

	if err := s.Clear(); err != nil {
		t.Errorf("Expected clearing empty store to succeed, got %v", err)
	}
	if err := s.Save(model.ProgramProfile{ProgramName: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoProfile) {
		t.Error("Expected profile gone after clear")
	}
}
