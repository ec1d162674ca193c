// Package model defines the YAML data model for certq check files: request
// steps with assertions and captures over HTTP responses and the peer TLS
// certificate.
package model

import (
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
)

// ErrParser is the sentinel error for all check file parsing failures.
// It allows error wrapping and consistent error checks using errors.Is().
var ErrParser = errors.New("parser error")

// Step is a single request step in a check file, with optional condition,
// assertions and captures.
type Step struct {
	Method   string    `yaml:"method"`
	URL      string    `yaml:"url"`
	When     string    `yaml:"when,omitempty"`
	Headers  KeyValues `yaml:"headers,omitempty"`
	Query    KeyValues `yaml:"query,omitempty"`
	Options  Options   `yaml:"options,omitempty"`
	Body     string    `yaml:"body,omitempty"`
	BodyFile string    `yaml:"body_file,omitempty"`
	Asserts  Asserts   `yaml:"asserts,omitempty"`
	Captures *Captures `yaml:"captures,omitempty"`
}

// Options configures retry and redirect behavior for a step.
type Options struct {
	Retries        int   `yaml:"retries,omitempty"`
	FollowRedirect *bool `yaml:"follow_redirect,omitempty"`
}

// Parse decodes a YAML stream of steps.
func Parse(r io.Reader) ([]Step, error) {
	decoder := yaml.NewDecoder(r)

	var steps []Step
	if err := decoder.Decode(&steps); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrParser, err)
	}

	return steps, nil
}
