package certx

import (
	"crypto/x509"
	"time"
)

// validityChecks grades a certificate's validity window against the current
// UTC time. Exactly one check is emitted.
func validityChecks(cert *x509.Certificate) []Check {
	now := time.Now().UTC()

	switch {
	case cert.NotBefore.After(now):
		return []Check{{
			Name:    "validity",
			Status:  StatusWarn,
			Message: "certificate is not yet valid",
		}}
	case cert.NotAfter.Before(now):
		return []Check{{
			Name:    "validity",
			Status:  StatusFail,
			Message: "certificate has expired",
		}}
	default:
		return []Check{{
			Name:    "validity",
			Status:  StatusOK,
			Message: "validity window OK",
		}}
	}
}

// csrChecks is the fixed check set for signing requests, which carry no
// validity window and no issuer.
func csrChecks() []Check {
	return []Check{{
		Name:    "issuer",
		Status:  StatusInfo,
		Message: "signing request has no issuer; it has not been issued by a CA yet",
	}}
}
