// Package certx decodes certificates and certificate signing requests from
// whatever encoding a caller manages to paste or upload, and summarizes them
// into a flat, export-friendly structure.
package certx

// Kind distinguishes full certificates from signing requests.
type Kind string

const (
	KindCertificate Kind = "cert"
	KindCSR         Kind = "csr"
)

// Format is the encoding the input was detected as. Detection order is
// fixed; see Decode.
type Format int

const (
	FormatPEMCert Format = iota
	FormatPEMCSR
	FormatDERCert
	FormatDERCSR
)

// String returns a short label for the detected format.
func (f Format) String() string {
	switch f {
	case FormatPEMCert:
		return "pem-cert"
	case FormatPEMCSR:
		return "pem-csr"
	case FormatDERCert:
		return "der-cert"
	case FormatDERCSR:
		return "der-csr"
	}
	return "unknown"
}

// CheckStatus grades a single health check result.
type CheckStatus string

const (
	StatusOK   CheckStatus = "OK"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
	StatusInfo CheckStatus = "INFO"
)

// Check is one rule-based health check result.
type Check struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

// Extension is one X.509 extension, with its value stringified and bounded
// in size.
type Extension struct {
	OID      string `json:"oid"`
	Name     string `json:"name"`
	Critical bool   `json:"critical"`
	Value    string `json:"value"`
}

// Properties are the scalar attributes common to certificates and CSRs.
// Validity bounds are empty for CSRs, which carry none.
type Properties struct {
	SerialNumber       string `json:"serial_number,omitempty"`
	NotBefore          string `json:"not_before,omitempty"`
	NotAfter           string `json:"not_after,omitempty"`
	SignatureAlgorithm string `json:"signature_algorithm"`
	PublicKey          string `json:"public_key"`
}

// CertificateInfo is the decoded summary of a certificate or CSR.
// A CSR has an empty (but non-nil) Issuer map and always carries an INFO
// check noting the missing issuer.
type CertificateInfo struct {
	Kind       Kind              `json:"kind"`
	Format     Format            `json:"-"`
	Subject    map[string]string `json:"subject"`
	Issuer     map[string]string `json:"issuer"`
	Properties Properties        `json:"properties"`
	Extensions []Extension       `json:"extensions"`
	Checks     []Check           `json:"checks"`
}
