package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jacoelho/certq/internal/certq/exit"
	"github.com/jacoelho/certq/internal/certq/httpclient"
	"github.com/jacoelho/certq/internal/certq/output"
)

// DefaultTimeout is the default timeout for check requests.
const DefaultTimeout = 30 * time.Second

var (
	ErrNoArguments           = errors.New("no arguments provided")
	ErrNoCheckFiles          = errors.New("no check files specified")
	ErrInvalidSecretFormat   = errors.New("secret must be in format name=value")
	ErrEmptySecretName       = errors.New("secret name cannot be empty")
	ErrInvalidVariableFormat = errors.New("variable must be in format name=value")
	ErrEmptyVariableName     = errors.New("variable name cannot be empty")
)

// Config holds everything a run needs: which check files to execute,
// how to reach the endpoints, and which values to substitute into
// templates.
type Config struct {
	CheckFiles []string
	Debug      bool
	Repeat     int // additional iterations after the first run, negative for infinite

	Insecure       bool
	CACertFile     string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 for unlimited

	OutputFormat output.OutputFormat
	MetricsAddr  string

	Secrets    map[string]any
	SecretFile string
	Variables  map[string]any

	// SecretSalt keys the redaction markers in debug dumps. It is
	// regenerated for every run so markers cannot be precomputed.
	SecretSalt string
}

// TLSConfig builds the TLS client configuration for check requests.
func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Insecure,
	}

	if c.CACertFile != "" {
		caCertPool, err := x509.SystemCertPool()
		if err != nil {
			caCertPool = x509.NewCertPool()
		}

		caCert, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.CACertFile, err)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.CACertFile)
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// HTTPClient builds the HTTP client used for check requests.
func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
	}

	return httpclient.New(tlsConfig, c.RequestTimeout), nil
}

// AllVariables merges secrets and variables for template substitution.
// Secrets win when keys conflict.
func (c *Config) AllVariables() map[string]any {
	combined := make(map[string]any)

	maps.Copy(combined, c.Variables)
	maps.Copy(combined, c.Secrets)

	return combined
}

// Validate checks that every referenced file exists.
func (c *Config) Validate() error {
	if len(c.CheckFiles) == 0 {
		return ErrNoCheckFiles
	}

	for _, file := range c.CheckFiles {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("check file %s not found: %w", file, err)
		}
	}

	if c.CACertFile != "" {
		if _, err := os.Stat(c.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.CACertFile, err)
		}
	}

	return nil
}

// secretsFlag collects repeated --secret flags.
type secretsFlag map[string]any

func (s secretsFlag) String() string {
	var pairs []string
	for k, v := range s {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (s secretsFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w, got: %s", ErrInvalidSecretFormat, value)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return ErrEmptySecretName
	}

	s[name] = parts[1]
	return nil
}

// variablesFlag collects repeated --variable flags.
type variablesFlag map[string]any

func (v variablesFlag) String() string {
	var pairs []string
	for k, val := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, val))
	}
	return strings.Join(pairs, ",")
}

func (v variablesFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w, got: %s", ErrInvalidVariableFormat, value)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return ErrEmptyVariableName
	}

	v[name] = parts[1]
	return nil
}

// Parse parses command-line arguments into a validated Config.
// On failure it returns a nil config and the exit result to print.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		debug        = fs.Bool("debug", false, "Show request and response details")
		repeat       = fs.Int("repeat", 0, "Additional repetitions after the first run (negative for infinite)")
		insecure     = fs.Bool("insecure", false, "Skip TLS certificate verification")
		caCertFile   = fs.String("cacert", "", "Path to CA certificate file for TLS verification")
		secrets      = make(secretsFlag)
		secretFile   = fs.String("secret-file", "", "Path to dotenv-style file containing secrets")
		variables    = make(variablesFlag)
		variableFile = fs.String("variable-file", "", "Path to dotenv-style file containing template variables")
		timeout      = fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
		rateLimit    = fs.Float64("rate-limit", 0, "Rate limit in requests per second (0 for unlimited)")
		outputName   = fs.String("output", "text", "Output format, text or json")
		metricsAddr  = fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	)

	fs.Var(secrets, "secret", "Secret in format name=value (can be used multiple times)")
	fs.Var(variables, "variable", "Variable in format name=value (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	files := fs.Args()
	if len(files) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoCheckFiles, Usage())
	}

	outputFormat, err := output.ParseOutputFormat(*outputName)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	// Precedence: file values first, then repeated flags on top.
	var finalVariables map[string]any
	if *variableFile != "" {
		fileVariables, err := loadDotenvFile(*variableFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load variable file: %v\n\n%s", err, Usage())
		}
		finalVariables = make(map[string]any)
		maps.Copy(finalVariables, fileVariables)
	}
	if len(variables) > 0 {
		if finalVariables == nil {
			finalVariables = make(map[string]any)
		}
		maps.Copy(finalVariables, variables)
	}

	finalSecrets := make(map[string]any)
	if *secretFile != "" {
		fileSecrets, err := loadDotenvFile(*secretFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load secret file: %v\n\n%s", err, Usage())
		}
		maps.Copy(finalSecrets, fileSecrets)
	}
	maps.Copy(finalSecrets, secrets)

	config := &Config{
		CheckFiles:     files,
		Debug:          *debug,
		Repeat:         *repeat,
		Insecure:       *insecure,
		CACertFile:     *caCertFile,
		RequestTimeout: *timeout,
		RateLimit:      *rateLimit,
		OutputFormat:   outputFormat,
		MetricsAddr:    *metricsAddr,
		Secrets:        finalSecrets,
		SecretFile:     *secretFile,
		Variables:      finalVariables,
		SecretSalt:     uuid.NewString(),
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// loadDotenvFile reads a key=value file in dotenv format.
func loadDotenvFile(filename string) (map[string]any, error) {
	pairs, err := godotenv.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	values := make(map[string]any, len(pairs))
	for key, value := range pairs {
		values[key] = value
	}

	return values, nil
}

// Usage returns the help text for the CLI.
func Usage() string {
	return `certq - HTTP check runner with TLS certificate assertions

Usage: certq [options] <file1> [file2] ...

Options:
  --debug                 Show request and response details (secrets redacted)
  --repeat N              Additional repetitions after the first run (negative for infinite)
  --insecure              Skip TLS certificate verification
  --cacert FILE           Path to CA certificate file for TLS verification
  --timeout DURATION      HTTP request timeout (default: 30s)
  --rate-limit N          Rate limit in requests per second (0 for unlimited)
  --output FORMAT         Output format, text or json (default: text)
  --metrics-addr ADDR     Serve Prometheus metrics on ADDR while running
  --secret NAME=VALUE     Secret in name=value format (can be used multiple times)
  --secret-file FILE      Path to dotenv-style file containing secrets
  --variable NAME=VALUE   Variable in name=value format (can be used multiple times)
  --variable-file FILE    Path to dotenv-style file containing template variables
  -h, --help              Show this help message

Examples:
  certq checks/api.yaml                              # Run one check file
  certq checks/api.yaml --debug                      # Show redacted request/response dumps
  certq checks/api.yaml --rate-limit 5               # Throttle to 5 requests per second
  certq checks/api.yaml --repeat -1 --metrics-addr :9090
  certq checks/api.yaml checks/auth.yaml             # Run files in sequence
  certq checks/api.yaml --secret API_KEY=secret      # Pass a secret to templates
  certq checks/api.yaml --variable HOST=example.com  # Pass a variable to templates`
}
