package config

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseNormalizesTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "default port",
			args: []string{"example.com"},
			want: []string{"example.com:443"},
		},
		{
			name: "explicit port",
			args: []string{"example.com:8443"},
			want: []string{"example.com:8443"},
		},
		{
			name: "trailing colon falls back to default port",
			args: []string{"example.com:"},
			want: []string{"example.com:443"},
		},
		{
			name: "multiple targets preserve order",
			args: []string{"a.example.com", "b.example.com:8443"},
			want: []string{"a.example.com:443", "b.example.com:8443"},
		},
		{
			name: "bare ipv6 literal",
			args: []string{"::1"},
			want: []string{"[::1]:443"},
		},
		{
			name: "bracketed ipv6 literal",
			args: []string{"[::1]"},
			want: []string{"[::1]:443"},
		},
		{
			name: "bracketed ipv6 with port",
			args: []string{"[::1]:8443"},
			want: []string{"[::1]:8443"},
		},
		{
			name: "surrounding whitespace",
			args: []string{"  example.com  "},
			want: []string{"example.com:443"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse(append([]string{"certdump"}, tt.args...))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(cfg.Targets, tt.want) {
				t.Fatalf("Targets = %v, want %v", cfg.Targets, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]string{"certdump", "--timeout", "5s", "--insecure", "--format", "yaml", "example.com"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if !cfg.Insecure {
		t.Fatal("expected Insecure=true")
	}
	if cfg.Format != FormatYAML {
		t.Fatalf("Format = %q, want %q", cfg.Format, FormatYAML)
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]string{"certdump", "example.com"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Insecure {
		t.Fatal("expected Insecure=false")
	}
	if cfg.Format != FormatText {
		t.Fatalf("Format = %q, want %q", cfg.Format, FormatText)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "no arguments",
			args:    nil,
			wantErr: ErrNoArguments,
		},
		{
			name:    "no targets",
			args:    []string{"certdump"},
			wantErr: ErrNoTargets,
		},
		{
			name:    "no targets after flags",
			args:    []string{"certdump", "--insecure"},
			wantErr: ErrNoTargets,
		},
		{
			name:    "url target",
			args:    []string{"certdump", "https://example.com"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "empty target",
			args:    []string{"certdump", "  "},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "port zero",
			args:    []string{"certdump", "example.com:0"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "port out of range",
			args:    []string{"certdump", "example.com:70000"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "port not numeric",
			args:    []string{"certdump", "example.com:https"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "missing host",
			args:    []string{"certdump", ":8443"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "invalid format",
			args:    []string{"certdump", "--format", "xml", "example.com"},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "help",
			args:    []string{"certdump", "--help"},
			wantErr: ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseUnknownFlag(t *testing.T) {
	t.Parallel()

	_, err := Parse([]string{"certdump", "--bogus", "example.com"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
