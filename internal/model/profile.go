package model

import "fmt"

// ProgramProfile describes the user's own asset. It is the comparison
// baseline for stance scoring. Only the program name is required: a bare
// drug name or mechanism is enough to start matching against.
type ProgramProfile struct {
	ProgramName     string `json:"program_name" yaml:"program_name"`
	Indication      string `json:"indication,omitempty" yaml:"indication,omitempty"`
	Stage           string `json:"stage,omitempty" yaml:"stage,omitempty"`
	Target          string `json:"target,omitempty" yaml:"target,omitempty"`
	Differentiators string `json:"differentiators,omitempty" yaml:"differentiators,omitempty"`
}

// Validate checks that the profile carries the required program name.
func (p ProgramProfile) Validate() error {
	if p.ProgramName == "" {
		return fmt.Errorf("program profile must have non-empty program_name")
	}
	return nil
}
