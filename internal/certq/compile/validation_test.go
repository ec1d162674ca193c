package compile

import (
	"strings"
	"testing"

	"github.com/jacoelho/certq/internal/certq/model"
)

func mustParseStep(t *testing.T, yamlContent string) model.Step {
	t.Helper()

	steps, err := model.Parse(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("failed to parse YAML fixture: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected one step, got %d", len(steps))
	}
	return steps[0]
}

func TestValidateStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		step      model.Step
		wantError bool
	}{
		{
			name: "valid_step",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  asserts:
    status:
      - op: equals
        value: 200
`),
		},
		{
			name: "exists_with_value_is_invalid",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  asserts:
    status:
      - op: exists
        value: true
`),
			wantError: true,
		},
		{
			name: "length_without_value_is_invalid",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  asserts:
    status:
      - op: length
`),
			wantError: true,
		},
		{
			// Missing assert names are rejected at parse time for YAML
			// input; the validator still guards steps built in code.
			name: "missing_certificate_assert_name",
			step: model.Step{
				Method: "GET",
				URL:    "https://api.example.com/health",
				Asserts: model.Asserts{
					Certificate: []model.CertificateAssert{{
						Predicate: model.Predicate{Operation: "equals", Value: "CN=example.com", HasValue: true},
					}},
				},
			},
			wantError: true,
		},
		{
			name: "invalid_certificate_field",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  captures:
    certificate:
      - name: cert_info
        certificate_field: unknown_field
`),
			wantError: true,
		},
		{
			name: "invalid_method",
			step: mustParseStep(t, `
- method: TRACE
  url: https://api.example.com/health
`),
			wantError: true,
		},
		{
			name: "body_and_body_file_together_is_invalid",
			step: mustParseStep(t, `
- method: POST
  url: https://api.example.com/upload
  body: "inline"
  body_file: ./payload.bin
`),
			wantError: true,
		},
		{
			name: "valid_when_condition",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  when: status_code == 200 && is_ready
`),
		},
		{
			name: "invalid_when_condition",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  when: status_code ==
`),
			wantError: true,
		},
		{
			name: "non_boolean_when_condition",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  when: 1
`),
			wantError: true,
		},
		{
			name: "invalid_jsonpath_assert_path",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/users
  asserts:
    jsonpath:
      - path: "$.users["
        op: exists
`),
			wantError: true,
		},
		{
			name: "invalid_regex_capture_pattern",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/users
  captures:
    regex:
      - name: token
        pattern: "[unclosed"
`),
			wantError: true,
		},
		{
			name: "negative_retries",
			step: mustParseStep(t, `
- method: GET
  url: https://api.example.com/health
  options:
    retries: -1
`),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStep(tt.step)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateStep() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateStepAcceptsAllCertificateFields(t *testing.T) {
	t.Parallel()

	asserts := make([]model.CertificateAssert, 0, 5)
	captures := make([]model.CertificateCapture, 0, 5)
	for _, field := range model.SupportedCertificateFields() {
		asserts = append(asserts, model.CertificateAssert{
			Name:      field,
			Predicate: model.Predicate{Operation: "exists"},
		})
		captures = append(captures, model.CertificateCapture{
			Name:             "cert_" + field,
			CertificateField: field,
		})
	}

	step := model.Step{
		Method:   "GET",
		URL:      "https://api.example.com/health",
		Asserts:  model.Asserts{Certificate: asserts},
		Captures: &model.Captures{Certificate: captures},
	}

	if err := ValidateStep(step); err != nil {
		t.Fatalf("ValidateStep() error = %v, want nil", err)
	}
}

func TestValidateStepsReportsStepIndex(t *testing.T) {
	t.Parallel()

	steps := []model.Step{
		{Method: "GET", URL: "https://api.example.com/health"},
		{Method: "TRACE", URL: "https://api.example.com/health"},
	}

	err := ValidateSteps(steps)
	if err == nil {
		t.Fatal("ValidateSteps() expected error")
	}
	if !strings.Contains(err.Error(), "step 2") {
		t.Fatalf("ValidateSteps() error = %v, want step index", err)
	}
}
