package model

// Captures groups the supported capture families for a step. Captured
// values become variables for later steps; redacted captures are masked in
// debug output.
type Captures struct {
	Status      []StatusCapture      `yaml:"status,omitempty"`
	Headers     []HeaderCapture      `yaml:"headers,omitempty"`
	Certificate []CertificateCapture `yaml:"certificate,omitempty"`
	JSONPath    []JSONPathCapture    `yaml:"jsonpath,omitempty"`
	Regex       []RegexCapture       `yaml:"regex,omitempty"`
	Body        []BodyCapture        `yaml:"body,omitempty"`
}

// StatusCapture stores the HTTP status code under Name.
type StatusCapture struct {
	Name   string `yaml:"name"`
	Redact bool   `yaml:"redact,omitempty"`
}

// HeaderCapture stores a response header value under Name.
type HeaderCapture struct {
	Name       string `yaml:"name"`
	HeaderName string `yaml:"header_name"`
	Redact     bool   `yaml:"redact,omitempty"`
}

// CertificateCapture stores one field of the peer certificate record
// under Name.
type CertificateCapture struct {
	Name             string `yaml:"name"`
	CertificateField string `yaml:"certificate_field"`
	Redact           bool   `yaml:"redact,omitempty"`
}

// JSONPathCapture stores a value selected from the JSON response body.
type JSONPathCapture struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Redact bool   `yaml:"redact,omitempty"`
}

// RegexCapture stores a regex submatch of the response body. Group 0 is the
// full match.
type RegexCapture struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Group   int    `yaml:"group,omitempty"`
	Redact  bool   `yaml:"redact,omitempty"`
}

// BodyCapture stores the entire response body under Name.
type BodyCapture struct {
	Name   string `yaml:"name"`
	Redact bool   `yaml:"redact,omitempty"`
}
