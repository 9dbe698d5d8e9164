package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

var errNoCertificates = errors.New("no signing certificates")

// FileCertificateSource reads the signing certificate shipped with the binary, PEM or DER.
type FileCertificateSource struct {
	Path string
}

var _ CertificateSource = FileCertificateSource{}

func (f FileCertificateSource) SigningCertificates() ([][]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var certs [][]byte
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			certs = append(certs, block.Bytes)
		}
	}
	if len(certs) == 0 && len(data) > 0 && !strings.Contains(string(data), "-----BEGIN") {
		certs = append(certs, data)
	}
	if len(certs) == 0 {
		return nil, errNoCertificates
	}
	return certs, nil
}

// CertificateSHA256 returns the lowercase hex SHA-256 of a DER certificate.
func CertificateSHA256(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// signatureMatches reports whether any signing certificate hashes to expected.
// An empty expectation or an empty certificate list never matches.
func signatureMatches(certs [][]byte, expected string) bool {
	want := normaliseHash(expected)
	if want == "" {
		return false
	}
	for _, der := range certs {
		got := CertificateSHA256(der)
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
			return true
		}
	}
	return false
}

// normaliseHash accepts "AB:CD:..." keytool style as well as plain hex
func normaliseHash(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), ":", ""))
}
