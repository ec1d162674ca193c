package capture

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jacoelho/certq/internal/certq/certinfo"
	"github.com/jacoelho/certq/internal/certq/model"
)

// Certificate fields addressable by capture and assert selectors.
const (
	CertificateFieldSubject      = model.CertificateFieldSubject
	CertificateFieldIssuer       = model.CertificateFieldIssuer
	CertificateFieldStartDate    = model.CertificateFieldStartDate
	CertificateFieldExpireDate   = model.CertificateFieldExpireDate
	CertificateFieldSerialNumber = model.CertificateFieldSerialNumber
)

// ExtractStatusCode returns the numeric HTTP status code.
func ExtractStatusCode(resp *http.Response) (int, error) {
	if resp == nil {
		return 0, fmt.Errorf("%w: response is nil", ErrInvalidInput)
	}
	return resp.StatusCode, nil
}

// ExtractHeader returns the first value for headerName, matching case-insensitively.
func ExtractHeader(resp *http.Response, headerName string) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: response is nil", ErrInvalidInput)
	}

	if headerName == "" {
		return "", fmt.Errorf("%w: header name cannot be empty", ErrInvalidInput)
	}

	headerValue := resp.Header.Get(headerName)
	if headerValue == "" {
		return "", ErrNotFound
	}

	return headerValue, nil
}

// ExtractAllHeaders returns a copy of all response headers.
func ExtractAllHeaders(resp *http.Response) (map[string][]string, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: response is nil", ErrInvalidInput)
	}

	if resp.Header == nil {
		return make(map[string][]string), nil
	}

	headers := make(map[string][]string, len(resp.Header))
	for k, v := range resp.Header {
		headers[k] = append([]string{}, v...)
	}

	return headers, nil
}

// ExtractBody returns the response body as a UTF-8 string.
func ExtractBody(body []byte) (string, error) {
	if body == nil {
		return "", fmt.Errorf("%w: body is nil", ErrInvalidInput)
	}
	return string(body), nil
}

// ExtractBodyBytes returns the raw response body.
func ExtractBodyBytes(body []byte) ([]byte, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: body is nil", ErrInvalidInput)
	}
	return body, nil
}

// ParseFormData parses application/x-www-form-urlencoded data from raw bytes.
func ParseFormData(body []byte) (url.Values, error) {
	if len(body) == 0 {
		return url.Values{}, nil
	}

	return url.ParseQuery(string(body))
}

// ExtractAllCertificateFields reads the first peer certificate of the TLS
// connection and runs it through the certinfo text pipeline, returning the
// parsed record.
func ExtractAllCertificateFields(resp *http.Response) (*certinfo.Certificate, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: response is nil", ErrInvalidInput)
	}

	if resp.TLS == nil || len(resp.TLS.PeerCertificates) == 0 {
		return nil, ErrNotFound
	}

	lines := certinfo.Describe(resp.TLS.PeerCertificates[0])
	record, err := certinfo.Parse(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	return record, nil
}

// ExtractCertificateField selects one field from the certificate record.
// Date fields are returned as RFC 3339 strings in UTC.
func ExtractCertificateField(resp *http.Response, field string) (any, error) {
	record, err := ExtractAllCertificateFields(resp)
	if err != nil {
		return nil, err
	}

	switch field {
	case CertificateFieldSubject:
		return record.Subject, nil
	case CertificateFieldIssuer:
		return record.Issuer, nil
	case CertificateFieldStartDate:
		return record.StartDate.Format(time.RFC3339), nil
	case CertificateFieldExpireDate:
		return record.ExpireDate.Format(time.RFC3339), nil
	case CertificateFieldSerialNumber:
		return record.SerialNumber, nil
	default:
		return nil, fmt.Errorf("%w: unsupported certificate field: %s", ErrInvalidInput, field)
	}
}
