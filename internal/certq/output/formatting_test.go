package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSummaryFormatText(t *testing.T) {
	t.Parallel()

	summary := NewSummary(2)
	summary.Add(FileResult{
		Filename:     "checks/api.yaml",
		RequestCount: 3,
		Duration:     1200 * time.Millisecond,
	})
	summary.Add(FileResult{
		Filename:     "checks/expired.yaml",
		RequestCount: 1,
		Duration:     300 * time.Millisecond,
		Error:        errors.New("certificate expire_date assertion failed"),
	})
	summary.SetTotalDuration(2 * time.Second)

	var out bytes.Buffer
	if err := summary.Format(FormatText, &out); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	text := out.String()
	wantLines := []string{
		"checks/api.yaml: ok (3 request(s) in 1200 ms)",
		"checks/expired.yaml: failed: certificate expire_date assertion failed (1 request(s) in 300 ms)",
		"Check files:   2",
		"Requests:      4 (2.00/s)",
		"Passed files:  1 (50.0%)",
		"Failed files:  1 (50.0%)",
		"Duration:      2000 ms",
	}
	for _, want := range wantLines {
		if !strings.Contains(text, want) {
			t.Fatalf("text output missing %q, got:\n%s", want, text)
		}
	}
}

func TestSummaryFormatJSON(t *testing.T) {
	t.Parallel()

	summary := NewSummary(1)
	summary.Add(FileResult{
		Filename:     "checks/api.yaml",
		RequestCount: 2,
		Duration:     1500 * time.Millisecond,
		Error:        errors.New("boom"),
	})
	summary.SetTotalDuration(2 * time.Second)

	var out bytes.Buffer
	if err := summary.Format(FormatJSON, &out); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}

	if payload["executed_files"] != float64(1) {
		t.Fatalf("executed_files = %v, want 1", payload["executed_files"])
	}
	if payload["failed_files"] != float64(1) {
		t.Fatalf("failed_files = %v, want 1", payload["failed_files"])
	}
}

func TestFormatAggregatedJSON(t *testing.T) {
	t.Parallel()

	first := NewSummary(1)
	first.Add(FileResult{Filename: "checks/first.yaml", RequestCount: 1, Duration: 100 * time.Millisecond})
	first.SetTotalDuration(200 * time.Millisecond)

	second := NewSummary(1)
	second.Add(FileResult{Filename: "checks/second.yaml", RequestCount: 2, Duration: 100 * time.Millisecond})
	second.SetTotalDuration(300 * time.Millisecond)

	var out bytes.Buffer
	if err := FormatAggregated(FormatJSON, &out, []*Summary{first, second}); err != nil {
		t.Fatalf("FormatAggregated() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("aggregated result is not valid JSON: %v", err)
	}

	if _, ok := payload["iterations"]; !ok {
		t.Fatalf("iterations key missing from aggregated JSON payload")
	}
	if _, ok := payload["aggregated"]; !ok {
		t.Fatalf("aggregated key missing from aggregated JSON payload")
	}
}

func TestFormatAggregatedSingleIterationUsesPlainSummary(t *testing.T) {
	t.Parallel()

	only := NewSummary(1)
	only.Add(FileResult{Filename: "checks/only.yaml", RequestCount: 1, Duration: 50 * time.Millisecond})
	only.SetTotalDuration(60 * time.Millisecond)

	var out bytes.Buffer
	if err := FormatAggregated(FormatText, &out, []*Summary{only}); err != nil {
		t.Fatalf("FormatAggregated() error = %v", err)
	}

	if strings.Contains(out.String(), "ITERATION RESULTS") {
		t.Fatalf("single iteration should not print the iteration banner, got:\n%s", out.String())
	}
}

func TestFormatDebugJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := FormatDebug(FormatJSON, &out, "REQUEST", []byte("GET / HTTP/1.1")); err != nil {
		t.Fatalf("FormatDebug() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("debug result is not valid JSON: %v", err)
	}

	if payload["description"] != "REQUEST" {
		t.Fatalf("description = %v, want REQUEST", payload["description"])
	}
}

func TestFormatDebugText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := FormatDebug(FormatText, &out, "RESPONSE", []byte("HTTP/1.1 200 OK")); err != nil {
		t.Fatalf("FormatDebug() error = %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "RESPONSE:") {
		t.Fatalf("text output missing description, got:\n%s", text)
	}
	if !strings.Contains(text, "HTTP/1.1 200 OK") {
		t.Fatalf("text output missing payload, got:\n%s", text)
	}
}
