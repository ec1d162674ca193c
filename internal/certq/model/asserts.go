package model

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
)

// Asserts groups the supported assertion families for a step.
type Asserts struct {
	Status      []StatusAssert      `yaml:"status,omitempty"`
	Headers     []HeaderAssert      `yaml:"headers,omitempty"`
	Certificate []CertificateAssert `yaml:"certificate,omitempty"`
	JSONPath    []JSONPathAssert    `yaml:"jsonpath,omitempty"`
}

// StatusAssert asserts on the HTTP status code.
type StatusAssert struct {
	Predicate `yaml:",inline"`
}

// HeaderAssert asserts on a named response header.
type HeaderAssert struct {
	Name      string    `yaml:"name"`
	Predicate Predicate `yaml:",inline"`
}

// CertificateAssert asserts on one field of the peer certificate record.
// Name holds the certificate field (subject, issuer, start_date,
// expire_date, serial_number).
type CertificateAssert struct {
	Name      string    `yaml:"name"`
	Predicate Predicate `yaml:",inline"`
}

// JSONPathAssert asserts on a value selected from the JSON response body.
type JSONPathAssert struct {
	Path      string    `yaml:"path"`
	Predicate Predicate `yaml:",inline"`
}

func (h *HeaderAssert) UnmarshalYAML(node ast.Node) error {
	return unmarshalAssertWithField(node, "name", &h.Name, &h.Predicate, "header assert", true)
}

func (c *CertificateAssert) UnmarshalYAML(node ast.Node) error {
	return unmarshalAssertWithField(node, "name", &c.Name, &c.Predicate, "certificate assert", true)
}

func (p *JSONPathAssert) UnmarshalYAML(node ast.Node) error {
	return unmarshalAssertWithField(node, "path", &p.Path, &p.Predicate, "jsonpath assert", false)
}

// unmarshalAssertWithField splits an assert mapping into its addressing
// field (name/path) and the inline predicate keys.
func unmarshalAssertWithField(node ast.Node, fieldName string, fieldValue *string, predicate *Predicate, location string, required bool) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		return fmt.Errorf("%w: %s: expected mapping node", ErrParser, location)
	}

	var predNode *ast.MappingNode
	for _, pair := range mapNode.Values {
		keyNode, ok := pair.Key.(*ast.StringNode)
		if !ok {
			return fmt.Errorf("%w: %s: key must be string", ErrParser, location)
		}

		if keyNode.Value == fieldName {
			valueNode, ok := pair.Value.(*ast.StringNode)
			if !ok {
				return fmt.Errorf("%w: %s: %s value must be string", ErrParser, location, fieldName)
			}
			*fieldValue = valueNode.Value
			continue
		}

		if predNode == nil {
			predNode = &ast.MappingNode{}
		}
		predNode.Values = append(predNode.Values, pair)
	}

	if predNode != nil {
		if err := predicate.UnmarshalYAML(predNode); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrParser, location, err)
		}
	}

	if required && *fieldValue == "" {
		return fmt.Errorf("%w: %s: missing required '%s' field", ErrParser, location, fieldName)
	}

	return nil
}
