package certx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cynit/hub/pkg/certx"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func newTestCertDER(t *testing.T, notBefore, notAfter time.Time) []byte {
	t.Helper()
	key := newTestKey(t)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject: pkix.Name{
			Country:      []string{"BE"},
			Organization: []string{"CyNiT Hub"},
			CommonName:   "localhost",
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func newTestCSRDER(t *testing.T) []byte {
	t.Helper()
	key := newTestKey(t)

	tmpl := &x509.CertificateRequest{
		Subject: pkix.Name{
			Country:      []string{"BE"},
			Organization: []string{"CyNiT Hub"},
			CommonName:   "api.example.com",
		},
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, tmpl, key)
	require.NoError(t, err)
	return der
}

func TestDecodePEMCertificate(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	info, err := certx.Decode(pemBytes, "server.crt")
	require.NoError(t, err)

	require.Equal(t, certx.KindCertificate, info.Kind)
	require.Equal(t, certx.FormatPEMCert, info.Format)
	require.Equal(t, "localhost", info.Subject["CN"])
	require.Equal(t, "BE", info.Subject["C"])
	require.Equal(t, "CyNiT Hub", info.Subject["O"])
	require.Equal(t, "localhost", info.Issuer["CN"])
	require.Equal(t, "42", info.Properties.SerialNumber)
	require.Equal(t, "sha256", info.Properties.SignatureAlgorithm)
	require.Equal(t, "RSA 2048 bits", info.Properties.PublicKey)

	require.Len(t, info.Checks, 1)
	require.Equal(t, certx.StatusOK, info.Checks[0].Status)

	var san *certx.Extension
	for i := range info.Extensions {
		if info.Extensions[i].Name == "subjectAltName" {
			san = &info.Extensions[i]
		}
	}
	require.NotNil(t, san, "expected a subjectAltName extension")
	require.Contains(t, san.Value, "DNS:localhost")
	require.Contains(t, san.Value, "IP:127.0.0.1")
}

func TestDecodePEMCertificateCRLF(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	// Pasted-from-Windows flavor: CRLF endings and trailing spaces
	mangled := strings.ReplaceAll(string(pemBytes), "\n", "  \r\n")

	info, err := certx.Decode([]byte(mangled), "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCertificate, info.Kind)
}

func TestDecodePEMCertificateRequestWordBlocksCertBranch(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	// Any mention of REQUEST disqualifies the PEM-certificate reading, even
	// when a valid certificate block is present.
	tainted := "Exported from a REQUEST ticket\n" + string(pemBytes)

	_, err := certx.Decode([]byte(tainted), "ticket.txt")
	require.ErrorIs(t, err, certx.ErrUnrecognizedFormat)
}

func TestDecodeExpiredCertificate(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour))

	info, err := certx.Decode(der, "")
	require.NoError(t, err)

	require.Len(t, info.Checks, 1)
	require.Equal(t, certx.StatusFail, info.Checks[0].Status)
	require.Contains(t, info.Checks[0].Message, "expired")
}

func TestDecodeNotYetValidCertificate(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(24*time.Hour), time.Now().Add(48*time.Hour))

	info, err := certx.Decode(der, "")
	require.NoError(t, err)

	require.Len(t, info.Checks, 1)
	require.Equal(t, certx.StatusWarn, info.Checks[0].Status)
}

func TestDecodePEMCSR(t *testing.T) {
	der := newTestCSRDER(t)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der})
	require.True(t, strings.HasPrefix(string(pemBytes), "-----BEGIN CERTIFICATE REQUEST-----"))

	info, err := certx.Decode(pemBytes, "request.csr")
	require.NoError(t, err)

	require.Equal(t, certx.KindCSR, info.Kind)
	require.Equal(t, certx.FormatPEMCSR, info.Format)
	require.Equal(t, "api.example.com", info.Subject["CN"])
	require.NotNil(t, info.Issuer)
	require.Empty(t, info.Issuer)

	require.Len(t, info.Checks, 1)
	require.Equal(t, certx.StatusInfo, info.Checks[0].Status)
	require.Contains(t, info.Checks[0].Message, "issuer")
}

func TestDecodeLegacyNewCertificateRequestHeader(t *testing.T) {
	der := newTestCSRDER(t)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "NEW CERTIFICATE REQUEST", Bytes: der})

	info, err := certx.Decode(pemBytes, "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCSR, info.Kind)
}

func TestDecodeBareBase64Certificate(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	b64 := base64.StdEncoding.EncodeToString(der)

	info, err := certx.Decode([]byte(b64), "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCertificate, info.Kind)
	require.Equal(t, certx.FormatDERCert, info.Format)
}

func TestDecodeXMLWrappedBase64(t *testing.T) {
	der := newTestCSRDER(t)
	b64 := base64.StdEncoding.EncodeToString(der)
	wrapped := "<X509Data><X509CSR>" + b64 + "</X509CSR></X509Data>"

	info, err := certx.Decode([]byte(wrapped), "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCSR, info.Kind)
}

func TestDecodeRawDER(t *testing.T) {
	certDER := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	info, err := certx.Decode(certDER, "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCertificate, info.Kind)

	csrDER := newTestCSRDER(t)
	info, err = certx.Decode(csrDER, "")
	require.NoError(t, err)
	require.Equal(t, certx.KindCSR, info.Kind)
	require.Equal(t, certx.FormatDERCSR, info.Format)
}

func TestDecodeUnrecognized(t *testing.T) {
	_, err := certx.Decode([]byte("this is definitely not a certificate!!"), "junk.txt")
	require.ErrorIs(t, err, certx.ErrUnrecognizedFormat)
	require.Contains(t, err.Error(), "junk.txt")
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := certx.Decode(nil, "")
	require.ErrorIs(t, err, certx.ErrEmptyInput)
}

func TestExportFormats(t *testing.T) {
	der := newTestCertDER(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	info, err := certx.Decode(der, "")
	require.NoError(t, err)

	jsonOut, err := info.ExportJSON()
	require.NoError(t, err)
	var roundtrip map[string]any
	require.NoError(t, json.Unmarshal(jsonOut, &roundtrip))
	require.Equal(t, "cert", roundtrip["kind"])

	csvOut := info.ExportCSV()
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	require.Equal(t, "Section;Field;Value", lines[0])
	require.Contains(t, csvOut, "General;kind;cert\n")
	require.Contains(t, csvOut, "Subject;CN;localhost\n")
	require.Contains(t, csvOut, "Checks;validity;OK: validity window OK\n")

	mdOut := info.ExportMarkdown()
	require.Contains(t, mdOut, "| Section | Field | Value |")
	require.Contains(t, mdOut, "| Subject | CN | localhost |")

	htmlOut := info.ExportHTML()
	require.Contains(t, htmlOut, "<table>")
	require.Contains(t, htmlOut, "<td>localhost</td>")
}

func TestExportCSRIssuerEmptyJSON(t *testing.T) {
	info, err := certx.Decode(newTestCSRDER(t), "")
	require.NoError(t, err)

	jsonOut, err := info.ExportJSON()
	require.NoError(t, err)
	require.Contains(t, string(jsonOut), `"issuer": {}`)
}
