package certinfo

import (
	"crypto/x509"
	"fmt"
	"math/big"
)

// Describe renders a certificate into the canonical attribute lines consumed
// by Parse: subject and issuer as RFC 2253 distinguished names, the serial
// number as lowercase hex without separators, and validity dates in the
// month-name GMT format.
func Describe(cert *x509.Certificate) []string {
	return []string{
		"Subject:" + cert.Subject.String(),
		"Issuer:" + cert.Issuer.String(),
		"Serial Number:" + formatSerial(cert.SerialNumber),
		"Start date:" + cert.NotBefore.UTC().Format(dateLayouts[0]),
		"Expire date:" + cert.NotAfter.UTC().Format(dateLayouts[0]),
	}
}

func formatSerial(serial *big.Int) string {
	if serial == nil {
		return ""
	}
	return fmt.Sprintf("%x", serial)
}
