package certx

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"regexp"
	"strings"
)

// Short names for the distinguished-name attributes that commonly appear in
// certificate subjects. Anything else falls back to its dotted OID.
var attrShortNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.5":                    "serialNumber",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "STREET",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"2.5.4.12":                   "title",
	"2.5.4.42":                   "GN",
	"2.5.4.4":                    "SN",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
	"1.2.840.113549.1.9.1":       "emailAddress",
}

var extensionNames = map[string]string{
	"2.5.29.14":          "subjectKeyIdentifier",
	"2.5.29.15":          "keyUsage",
	"2.5.29.17":          "subjectAltName",
	"2.5.29.19":          "basicConstraints",
	"2.5.29.31":          "cRLDistributionPoints",
	"2.5.29.32":          "certificatePolicies",
	"2.5.29.35":          "authorityKeyIdentifier",
	"2.5.29.37":          "extKeyUsage",
	"1.3.6.1.5.5.7.1.1":  "authorityInfoAccess",
	"1.3.6.1.4.1.11129.2.4.2": "signedCertificateTimestampList",
}

// nameToMap flattens a distinguished name into an attribute→value map,
// keyed by short name with a dotted-OID fallback.
func nameToMap(name pkix.Name) map[string]string {
	out := make(map[string]string, len(name.Names))
	for _, attr := range name.Names {
		oid := attr.Type.String()
		key, ok := attrShortNames[oid]
		if !ok {
			key = oid
		}
		out[key] = fmt.Sprint(attr.Value)
	}
	return out
}

// normalizePEM puts a pasted PEM blob back into parseable shape: CRLF and
// lone CR become LF, and per-line surrounding whitespace is dropped.
func normalizePEM(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n") + "\n"
}

var xmlTagRe = regexp.MustCompile(`<[^>]*>`)

// stripXMLTags removes XML-style tags, for certificates pasted straight out
// of SOAP or XML payloads.
func stripXMLTags(text string) string {
	return xmlTagRe.ReplaceAllString(text, "")
}

// stripWhitespace removes all whitespace characters from text.
func stripWhitespace(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, text)
}

var base64Re = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// looksLikeBase64 reports whether text (already whitespace-stripped) is
// plausibly standard base64.
func looksLikeBase64(text string) bool {
	return len(text) > 0 && base64Re.MatchString(text)
}

// publicKeySummary renders a one-line description of a public key.
func publicKeySummary(pub any) string {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA %d bits", key.N.BitLen())
	case *ecdsa.PublicKey:
		return fmt.Sprintf("EC %s", key.Curve.Params().Name)
	case *dsa.PublicKey:
		return fmt.Sprintf("DSA %d bits", key.P.BitLen())
	case ed25519.PublicKey:
		return "Ed25519"
	default:
		return fmt.Sprintf("%T", pub)
	}
}

// signatureHashName names the hash inside a signature algorithm, matching
// how certificate tooling usually reports it.
func signatureHashName(alg x509.SignatureAlgorithm) string {
	switch alg {
	case x509.MD5WithRSA:
		return "md5"
	case x509.SHA1WithRSA, x509.DSAWithSHA1, x509.ECDSAWithSHA1:
		return "sha1"
	case x509.SHA256WithRSA, x509.SHA256WithRSAPSS, x509.DSAWithSHA256, x509.ECDSAWithSHA256:
		return "sha256"
	case x509.SHA384WithRSA, x509.SHA384WithRSAPSS, x509.ECDSAWithSHA384:
		return "sha384"
	case x509.SHA512WithRSA, x509.SHA512WithRSAPSS, x509.ECDSAWithSHA512:
		return "sha512"
	case x509.PureEd25519:
		return "ed25519"
	default:
		return alg.String()
	}
}
