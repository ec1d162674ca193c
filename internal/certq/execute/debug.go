package execute

import (
	"net/http"

	"github.com/jacoelho/certq/internal/certq/output"
	"github.com/jacoelho/certq/internal/certq/sanitizer"
)

// redactValues collects every value that must be masked in debug dumps:
// static secrets plus captures flagged for redaction.
func redactValues(captures map[string]CaptureValue, staticSecrets map[string]any) []any {
	var values []any

	for _, v := range staticSecrets {
		values = append(values, v)
	}

	for _, v := range captures {
		if v.Redact {
			values = append(values, v.Value)
		}
	}
	return values
}

// debugRequest writes the redacted request dump to the error stream so
// result output stays parseable.
func (r *Runner) debugRequest(req *http.Request, values []any) {
	redactor := sanitizer.New(values, r.config.SecretSalt)

	dump, err := redactor.DumpRequest(req)
	if err != nil {
		r.logf("Error dumping request: %v\n", err)
		return
	}

	if err := output.FormatDebug(r.config.OutputFormat, r.errorWriter(), "REQUEST", dump); err != nil {
		r.logf("Error formatting debug request: %v\n", err)
	}
}

// debugResponse writes the redacted response dump to the error stream.
func (r *Runner) debugResponse(resp *http.Response, body []byte, values []any) {
	redactor := sanitizer.New(values, r.config.SecretSalt)

	dump, err := redactor.DumpResponse(resp, body)
	if err != nil {
		r.logf("Error dumping response: %v\n", err)
		return
	}

	if err := output.FormatDebug(r.config.OutputFormat, r.errorWriter(), "RESPONSE", dump); err != nil {
		r.logf("Error formatting debug response: %v\n", err)
	}
}
