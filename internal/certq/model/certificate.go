package model

// Certificate fields addressable by asserts and captures. They mirror the
// fields of the parsed certificate record.
const (
	CertificateFieldSubject      = "subject"
	CertificateFieldIssuer       = "issuer"
	CertificateFieldStartDate    = "start_date"
	CertificateFieldExpireDate   = "expire_date"
	CertificateFieldSerialNumber = "serial_number"
)

// SupportedCertificateFields returns the addressable field list in stable order.
func SupportedCertificateFields() []string {
	return []string{
		CertificateFieldSubject,
		CertificateFieldIssuer,
		CertificateFieldStartDate,
		CertificateFieldExpireDate,
		CertificateFieldSerialNumber,
	}
}
