// Package config defines CLI options for the certdump inspector.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoArguments   = errors.New("no arguments provided")
	ErrHelp          = errors.New("help requested")
	ErrNoTargets     = errors.New("at least one target is required")
	ErrInvalidTarget = errors.New("invalid target")
	ErrInvalidFormat = errors.New("--format must be one of: text, yaml")
)

// DefaultTimeout caps the TLS dial and handshake per target.
const DefaultTimeout = 10 * time.Second

// Format selects the inspection output representation.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// Config defines CLI options for the certificate inspection command.
// Targets are normalized to host:port form.
type Config struct {
	Targets  []string
	Timeout  time.Duration
	Insecure bool
	Format   Format
}

// Parse parses and validates CLI arguments.
func Parse(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, ErrNoArguments
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	timeout := fs.Duration("timeout", DefaultTimeout, "TLS connection timeout")
	insecure := fs.Bool("insecure", false, "Skip TLS certificate verification")
	format := fs.String("format", "text", "Output format: text or yaml")

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("parse arguments: %w", err)
	}

	if fs.NArg() == 0 {
		return nil, ErrNoTargets
	}

	targets := make([]string, 0, fs.NArg())
	for _, arg := range fs.Args() {
		target, err := normalizeTarget(arg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	parsedFormat, err := parseFormat(*format)
	if err != nil {
		return nil, err
	}

	return &Config{
		Targets:  targets,
		Timeout:  *timeout,
		Insecure: *insecure,
		Format:   parsedFormat,
	}, nil
}

// normalizeTarget expands host[:port] into host:port, defaulting to 443.
// Bracketed IPv6 literals are supported.
func normalizeTarget(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}
	if strings.Contains(arg, "://") {
		return "", fmt.Errorf("%w: %s (use host[:port], not a URL)", ErrInvalidTarget, arg)
	}

	host, port, err := net.SplitHostPort(arg)
	if err != nil {
		return net.JoinHostPort(strings.Trim(arg, "[]"), "443"), nil
	}

	if host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidTarget, arg)
	}
	if port == "" {
		port = "443"
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: %s (port must be 1-65535)", ErrInvalidTarget, arg)
	}

	return net.JoinHostPort(host, port), nil
}

func parseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatYAML):
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w, got: %s", ErrInvalidFormat, input)
	}
}

// Usage returns command usage text.
func Usage() string {
	return `certdump - inspect TLS certificates and scaffold certq check files

Usage:
  certdump [options] host[:port] [host[:port] ...]

Options:
  --timeout DURATION  TLS connection timeout (default: 10s)
  --insecure          Skip TLS certificate verification
  --format FORMAT     Output format: text or yaml (default: text)
  -h, --help          Show this help message

Examples:
  certdump example.com
  certdump --timeout 5s example.com:8443 internal.example.net
  certdump --format yaml api.example.com > checks/api.yaml`
}
