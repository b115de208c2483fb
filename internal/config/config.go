// Package config holds the transpilation options. Options come from CLI
// flags, optionally overlaid by a YAML file, and are plumbed read-only
// through the pipeline.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls transformation behavior. Every flag is additive over the
// defaults; unknown keys in a config file are rejected.
type Options struct {
	// NoAlloc lowers collection construction to fixed-backing forms instead
	// of heap allocation.
	NoAlloc bool `yaml:"no_alloc"`

	// LazyEntrypoint marks the target for deferred account parsing.
	LazyEntrypoint bool `yaml:"lazy_entrypoint"`

	// InlineCPI expands same-runtime transfers to direct lamport arithmetic
	// instead of a cross-program invocation.
	InlineCPI bool `yaml:"inline_cpi"`

	// AnchorCompat derives content-based instruction discriminators so
	// existing clients keep working. Disabled, every instruction gets a
	// placeholder discriminator and uniqueness is not enforced.
	AnchorCompat bool `yaml:"anchor_compat"`

	// NoLogs strips diagnostic output from instruction bodies.
	NoLogs bool `yaml:"no_logs"`

	// UnsafeMath is accepted for config compatibility but has no effect on
	// rewriting.
	UnsafeMath bool `yaml:"unsafe_math"`
}

// Default returns the options used when nothing is specified.
func Default() Options {
	return Options{AnchorCompat: true}
}

// Load reads options from a YAML file, starting from the defaults.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return opts, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return opts, nil
}
