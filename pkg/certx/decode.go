package certx

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrEmptyInput is returned for a zero-length upload.
	ErrEmptyInput = errors.New("certx: empty input")

	// ErrUnrecognizedFormat is returned when every decode strategy failed.
	ErrUnrecognizedFormat = errors.New("certx: unrecognized certificate format")
)

// maxExtensionValueLen bounds stringified extension values in the output.
const maxExtensionValueLen = 8000

// Decode detects and parses a certificate or CSR from an arbitrary byte
// stream. filename is used in messages only and never touches the
// filesystem.
//
// Strategies are tried in a fixed order, first match wins:
//  1. PEM CSR when the text mentions a certificate request header,
//     including the legacy "NEW CERTIFICATE REQUEST" form
//  2. PEM certificate, only when the text never mentions REQUEST
//  3. bare base64 (XML tags stripped first) decoded to DER, certificate
//     before CSR
//  4. raw DER certificate, then raw DER CSR
//
// Reordering these changes which interpretation wins for ambiguous input,
// so the order is part of the contract.
func Decode(data []byte, filename string) (*CertificateInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	var reasons []string
	fail := func(strategy string, err error) {
		reasons = append(reasons, strategy+": "+err.Error())
	}

	var text string
	isText := utf8.Valid(data)
	if isText {
		text = string(data)
	} else {
		reasons = append(reasons, "text: input is not valid UTF-8")
	}

	if isText && strings.Contains(text, "CERTIFICATE REQUEST") {
		csr, err := parsePEMCSR(text, data)
		if err == nil {
			return fromCSR(csr, FormatPEMCSR), nil
		}
		fail("pem-csr", err)
	} else if isText && strings.Contains(text, "BEGIN CERTIFICATE") && !strings.Contains(text, "REQUEST") {
		cert, err := parsePEMCertificate(text)
		if err == nil {
			return fromCertificate(cert, FormatPEMCert), nil
		}
		fail("pem-cert", err)
	} else if isText {
		stripped := stripWhitespace(stripXMLTags(text))
		if looksLikeBase64(stripped) {
			der, err := base64.StdEncoding.DecodeString(stripped)
			if err != nil {
				fail("base64", err)
			} else {
				if cert, err := x509.ParseCertificate(der); err == nil {
					return fromCertificate(cert, FormatDERCert), nil
				} else {
					fail("base64-der-cert", err)
				}
				if csr, err := x509.ParseCertificateRequest(der); err == nil {
					return fromCSR(csr, FormatDERCSR), nil
				} else {
					fail("base64-der-csr", err)
				}
			}
		} else {
			reasons = append(reasons, "base64: text does not match the base64 alphabet")
		}
	}

	if cert, err := x509.ParseCertificate(data); err == nil {
		return fromCertificate(cert, FormatDERCert), nil
	} else {
		fail("der-cert", err)
	}
	if csr, err := x509.ParseCertificateRequest(data); err == nil {
		return fromCSR(csr, FormatDERCSR), nil
	} else {
		fail("der-csr", err)
	}

	name := filename
	if name == "" {
		name = "input"
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnrecognizedFormat, name, strings.Join(reasons, "; "))
}

// parsePEMCSR parses a PEM certificate request, trying the normalized text
// first and falling back to the raw bytes. The legacy Microsoft header
// "NEW CERTIFICATE REQUEST" decodes the same DER body.
func parsePEMCSR(text string, raw []byte) (*x509.CertificateRequest, error) {
	block, _ := pem.Decode([]byte(normalizePEM(text)))
	if block == nil {
		block, _ = pem.Decode(raw)
	}
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		// Normalization can mangle an unusual but valid layout; give the
		// raw bytes one more chance.
		if rawBlock, _ := pem.Decode(raw); rawBlock != nil {
			if csr, rawErr := x509.ParseCertificateRequest(rawBlock.Bytes); rawErr == nil {
				return csr, nil
			}
		}
		return nil, err
	}
	return csr, nil
}

func parsePEMCertificate(text string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(normalizePEM(text)))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return x509.ParseCertificate(block.Bytes)
}

func fromCertificate(cert *x509.Certificate, format Format) *CertificateInfo {
	info := &CertificateInfo{
		Kind:    KindCertificate,
		Format:  format,
		Subject: nameToMap(cert.Subject),
		Issuer:  nameToMap(cert.Issuer),
		Properties: Properties{
			SerialNumber:       cert.SerialNumber.String(),
			NotBefore:          cert.NotBefore.UTC().Format(time.RFC3339),
			NotAfter:           cert.NotAfter.UTC().Format(time.RFC3339),
			SignatureAlgorithm: signatureHashName(cert.SignatureAlgorithm),
			PublicKey:          publicKeySummary(cert.PublicKey),
		},
		Extensions: describeExtensions(cert),
		Checks:     validityChecks(cert),
	}
	return info
}

func fromCSR(csr *x509.CertificateRequest, format Format) *CertificateInfo {
	info := &CertificateInfo{
		Kind:    KindCSR,
		Format:  format,
		Subject: nameToMap(csr.Subject),
		Issuer:  map[string]string{},
		Properties: Properties{
			SignatureAlgorithm: signatureHashName(csr.SignatureAlgorithm),
			PublicKey:          publicKeySummary(csr.PublicKey),
		},
		Extensions: describeRawExtensions(csr.Extensions),
		Checks:     csrChecks(),
	}
	return info
}

func describeExtensions(cert *x509.Certificate) []Extension {
	exts := make([]Extension, 0, len(cert.Extensions))
	for _, ext := range cert.Extensions {
		oid := ext.Id.String()
		exts = append(exts, Extension{
			OID:      oid,
			Name:     extensionName(oid),
			Critical: ext.Critical,
			Value:    truncate(extensionValue(cert, oid, ext.Value), maxExtensionValueLen),
		})
	}
	return exts
}

func describeRawExtensions(raw []pkix.Extension) []Extension {
	exts := make([]Extension, 0, len(raw))
	for _, ext := range raw {
		oid := ext.Id.String()
		exts = append(exts, Extension{
			OID:      oid,
			Name:     extensionName(oid),
			Critical: ext.Critical,
			Value:    truncate(hex.EncodeToString(ext.Value), maxExtensionValueLen),
		})
	}
	return exts
}

func extensionName(oid string) string {
	if name, ok := extensionNames[oid]; ok {
		return name
	}
	return oid
}

// extensionValue renders a readable value for extensions the platform
// already decodes; everything else is hex.
func extensionValue(cert *x509.Certificate, oid string, raw []byte) string {
	switch oid {
	case "2.5.29.17": // subjectAltName
		var parts []string
		for _, dns := range cert.DNSNames {
			parts = append(parts, "DNS:"+dns)
		}
		for _, ip := range cert.IPAddresses {
			parts = append(parts, "IP:"+ip.String())
		}
		for _, email := range cert.EmailAddresses {
			parts = append(parts, "email:"+email)
		}
		for _, uri := range cert.URIs {
			parts = append(parts, "URI:"+uri.String())
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	case "2.5.29.19": // basicConstraints
		if cert.BasicConstraintsValid {
			return fmt.Sprintf("CA:%v", cert.IsCA)
		}
	}
	return hex.EncodeToString(raw)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
