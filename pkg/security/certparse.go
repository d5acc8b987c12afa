package security

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/autobot/fleetctl/pkg/types"
)

// ParseTLSMetadata extracts the queryable fields of a PEM-encoded
// server certificate: common name, subject, issuer, serial number,
// validity window, SHA-256 fingerprint of the DER form (property P3),
// and subject alternative names (DNS and IP, "DNS:"/"IP:" prefixed as
// the source formats them).
func ParseTLSMetadata(certPEM []byte) (*types.TLSMetadata, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	fingerprint := sha256.Sum256(cert.Raw)

	san := make([]string, 0, len(cert.DNSNames)+len(cert.IPAddresses))
	for _, name := range cert.DNSNames {
		san = append(san, "DNS:"+name)
	}
	for _, ip := range cert.IPAddresses {
		san = append(san, "IP:"+ip.String())
	}

	return &types.TLSMetadata{
		CommonName:   cert.Subject.CommonName,
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		Fingerprint:  hex.EncodeToString(fingerprint[:]),
		SAN:          san,
	}, nil
}
