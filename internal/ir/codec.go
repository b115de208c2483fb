package ir

import (
	"encoding/json"
	"fmt"
	"os"
)

// The pipeline boundary is JSON: the external parser hands us a source-form
// Program document, the external emitter consumes a target-form document.

// ReadProgram loads and structurally validates a source-form model.
func ReadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program model: %w", err)
	}
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, Structuralf("program model is not valid JSON: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// WriteTarget serializes a target-form model for the external emitter.
func WriteTarget(path string, tp *TargetProgram) error {
	data, err := json.MarshalIndent(tp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode target model: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write target model: %w", err)
	}
	return nil
}
