// Package inspect dials TLS endpoints, renders their leaf certificates as
// attribute lines, and scaffolds certq check files from the observed
// records.
package inspect

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jacoelho/certq/internal/certq/certinfo"
	"github.com/jacoelho/certq/internal/certq/clock"
	"github.com/jacoelho/certq/internal/certq/model"
	"github.com/jacoelho/certq/internal/certq/yaml"
	"github.com/jacoelho/certq/internal/dump/config"
)

// Inspection holds the rendered certificate info for one target.
type Inspection struct {
	Target string
	Lines  []string
	Record *certinfo.Certificate
}

// Run inspects every target and writes the selected representation to out.
// All targets are attempted; any failure turns the exit code to 1.
func Run(ctx context.Context, cfg *config.Config, out io.Writer, errOut io.Writer) int {
	inspections := make([]Inspection, 0, len(cfg.Targets))
	failed := false

	for _, target := range cfg.Targets {
		inspection, err := inspectTarget(ctx, target, cfg.Timeout, cfg.Insecure)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			failed = true
			continue
		}
		inspections = append(inspections, inspection)
	}

	if err := write(cfg.Format, out, inspections); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	if failed {
		return 1
	}
	return 0
}

func inspectTarget(ctx context.Context, addr string, timeout time.Duration, insecure bool) (Inspection, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return Inspection{}, fmt.Errorf("invalid target %s: %w", addr, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: insecure,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Inspection{}, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return Inspection{}, fmt.Errorf("no peer certificate from %s", addr)
	}

	lines := certinfo.Describe(state.PeerCertificates[0])
	record, err := certinfo.Parse(lines)
	if err != nil {
		return Inspection{}, fmt.Errorf("failed to parse certificate from %s: %w", addr, err)
	}

	return Inspection{Target: addr, Lines: lines, Record: record}, nil
}

func write(format config.Format, w io.Writer, inspections []Inspection) error {
	switch format {
	case config.FormatYAML:
		return writeYAML(w, inspections)
	default:
		return writeText(w, inspections)
	}
}

// writeText prints each certificate info block as the renderer emits it,
// prefixed with a target comment when more than one target was inspected.
func writeText(w io.Writer, inspections []Inspection) error {
	for i, inspection := range inspections {
		if len(inspections) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "# %s\n", inspection.Target); err != nil {
				return err
			}
		}

		for _, line := range inspection.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeYAML emits one check file with a GET step per target, pinning the
// observed certificates.
func writeYAML(w io.Writer, inspections []Inspection) error {
	if len(inspections) == 0 {
		return nil
	}

	steps := make([]model.Step, 0, len(inspections))
	for _, inspection := range inspections {
		steps = append(steps, ScaffoldStep(inspection.Target, inspection.Record))
	}

	payload, err := yaml.EncodeSteps(steps)
	if err != nil {
		return fmt.Errorf("failed to encode check file: %w", err)
	}

	_, err = w.Write(payload)
	return err
}

// ScaffoldStep builds a check step that pins the observed certificate:
// subject, issuer and serial number must match, and the expire date must
// stay past the scaffold time. Running the generated file later detects
// rotation and drift.
func ScaffoldStep(addr string, record *certinfo.Certificate) model.Step {
	return model.Step{
		Method: "GET",
		URL:    targetURL(addr),
		Asserts: model.Asserts{
			Certificate: []model.CertificateAssert{
				certAssert(model.CertificateFieldSubject, "equals", record.Subject),
				certAssert(model.CertificateFieldIssuer, "equals", record.Issuer),
				certAssert(model.CertificateFieldSerialNumber, "equals", record.SerialNumber),
				certAssert(model.CertificateFieldExpireDate, "greater_than", clock.Now().UTC().Format(time.RFC3339)),
			},
		},
	}
}

func certAssert(field string, op string, value any) model.CertificateAssert {
	return model.CertificateAssert{
		Name: field,
		Predicate: model.Predicate{
			Operation: op,
			Value:     value,
			HasValue:  true,
		},
	}
}

func targetURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "https://" + addr
	}

	if port == "443" {
		if strings.Contains(host, ":") {
			return "https://[" + host + "]"
		}
		return "https://" + host
	}

	return "https://" + net.JoinHostPort(host, port)
}
