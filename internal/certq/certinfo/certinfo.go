// Package certinfo parses the textual certificate metadata block handed over
// by a TLS inspection layer into a typed Certificate record.
//
// The input is an ordered sequence of lines, each nominally "Name:Value".
// The exact formatting (attribute capitalization, date representation)
// varies across platforms and library versions; the parser tolerates that
// variance and returns either a fully populated record or a precise failure
// reason. It never validates cryptographic properties, only descriptive
// metadata.
package certinfo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for certificate info parsing.
// These support error wrapping and can be checked using errors.Is().
var (
	// ErrMissingAttribute indicates a required attribute was absent from the
	// certificate info block.
	ErrMissingAttribute = errors.New("missing certificate attribute")

	// ErrUnparseableDate indicates a date value matched none of the known
	// textual formats.
	ErrUnparseableDate = errors.New("unparseable certificate date")
)

// Attribute names as they appear in the lowercase-normalized attribute map.
const (
	attrSubject      = "subject"
	attrIssuer       = "issuer"
	attrStartDate    = "start date"
	attrExpireDate   = "expire date"
	attrSerialNumber = "serial number"
)

// dateLayouts are tried in order; the first match wins. "GMT" is literal
// text, not a zone chunk: values carry no machine-readable offset, so the
// suffix is assumed and the naive time is taken as UTC.
var dateLayouts = []string{
	"Jan _2 15:04:05 2006 GMT",
	"2006-01-02 15:04:05 GMT",
}

// Certificate is the metadata record extracted from a certificate info
// block. It is constructed atomically: a parse either yields a complete
// record or an error, never a partially filled value.
type Certificate struct {
	Subject      string
	Issuer       string
	StartDate    time.Time
	ExpireDate   time.Time
	SerialNumber string
}

// Parse converts raw certificate info lines into a Certificate.
//
// Fields are extracted in a fixed order (subject, issuer, start date,
// expire date, serial number) and the first failure aborts the parse.
// Missing-attribute errors include a dump of the attribute map, except for
// the expire date, whose message never carried it.
func Parse(lines []string) (*Certificate, error) {
	attrs := parseAttributes(lines)

	subject, err := requiredAttribute(attrs, attrSubject)
	if err != nil {
		return nil, err
	}

	issuer, err := requiredAttribute(attrs, attrIssuer)
	if err != nil {
		return nil, err
	}

	startDate, err := requiredDate(attrs, attrStartDate)
	if err != nil {
		return nil, err
	}

	expireValue, ok := attrs[attrExpireDate]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, attrExpireDate)
	}
	expireDate, err := parseDate(expireValue)
	if err != nil {
		return nil, err
	}

	serialNumber, err := requiredAttribute(attrs, attrSerialNumber)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		Subject:      subject,
		Issuer:       issuer,
		StartDate:    startDate,
		ExpireDate:   expireDate,
		SerialNumber: serialNumber,
	}, nil
}

// parseAttribute splits a line at its first colon. The value keeps
// everything after the colon verbatim, leading spaces included.
func parseAttribute(line string) (name, value string, ok bool) {
	index := strings.IndexByte(line, ':')
	if index < 0 {
		return "", "", false
	}
	return line[:index], line[index+1:], true
}

// parseAttributes builds the attribute map from raw lines. Names are
// lowercased, later duplicates overwrite earlier ones, and lines without a
// colon are dropped rather than rejected (blank lines and continuation
// noise are expected in the input).
func parseAttributes(lines []string) map[string]string {
	attrs := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := parseAttribute(line)
		if !ok {
			continue
		}
		attrs[strings.ToLower(name)] = value
	}
	return attrs
}

func requiredAttribute(attrs map[string]string, name string) (string, error) {
	value, ok := attrs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s (have %v)", ErrMissingAttribute, name, attrs)
	}
	return value, nil
}

func requiredDate(attrs map[string]string, name string) (time.Time, error) {
	value, err := requiredAttribute(attrs, name)
	if err != nil {
		return time.Time{}, err
	}
	return parseDate(value)
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, value)
}
