package certs

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"
)

// Package certs extracts the private-key and certificate blocks from a PEM
// bundle used as the outbound connection's mutual-TLS identity. The rules
// here are positional: encoding/pem silently skips leading garbage, which
// would mask a corrupted bundle, so the boundaries are checked by hand.

// Bundle holds the two delimited text blocks, each a self-contained span
// including its own BEGIN/END boundary lines.
type Bundle struct {
	Key  []byte
	Cert []byte
}

var keyBlockTypes = []string{
	"RSA PRIVATE KEY",
	"EC PRIVATE KEY",
	"ENCRYPTED PRIVATE KEY",
	"PRIVATE KEY",
}

const certBlockType = "CERTIFICATE"

// LoadBundle reads and extracts the bundle at path.
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate bundle: %w", err)
	}
	return ExtractBundle(raw)
}

// ExtractBundle splits a PEM bundle into its private-key and certificate
// blocks. It fails entirely when either block is missing or malformed; no
// partial bundle is ever returned. The private-key block must begin at
// offset 0 of the input.
func ExtractBundle(raw []byte) (*Bundle, error) {
	text := string(raw)

	keyType := detectKeyType(text)
	if keyType == "" {
		return nil, fmt.Errorf("bundle contains no private key block")
	}

	keySpan, keyStart, err := extractBlock(text, keyType)
	if err != nil {
		return nil, err
	}
	if keyStart != 0 {
		return nil, fmt.Errorf("private key block must start at offset 0, found at %d", keyStart)
	}

	certSpan, _, err := extractBlock(text, certBlockType)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Key:  []byte(keySpan),
		Cert: []byte(certSpan),
	}, nil
}

// Certificate builds the TLS client identity from the extracted blocks.
func (b *Bundle) Certificate() (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(b.Cert, b.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("build key pair: %w", err)
	}
	return cert, nil
}

// detectKeyType finds which private-key block type the bundle mentions,
// by BEGIN or END marker, so a dangling END still gets the right error.
func detectKeyType(text string) string {
	for _, typ := range keyBlockTypes {
		if strings.Contains(text, beginMarker(typ)) || strings.Contains(text, endMarker(typ)) {
			return typ
		}
	}
	return ""
}

// extractBlock locates one delimited block of the given type and returns the
// full span including boundary lines, plus the BEGIN offset.
func extractBlock(text, typ string) (string, int, error) {
	begin := beginMarker(typ)
	end := endMarker(typ)

	bi := strings.Index(text, begin)
	ei := strings.Index(text, end)

	switch {
	case bi == -1 && ei == -1:
		return "", 0, fmt.Errorf("bundle is missing a %s block", strings.ToLower(typ))
	case ei == -1:
		return "", 0, fmt.Errorf("%s block has no END marker", strings.ToLower(typ))
	case bi == -1 || ei < bi:
		return "", 0, fmt.Errorf("%s END marker has no matching prior BEGIN", strings.ToLower(typ))
	}

	return text[bi : ei+len(end)], bi, nil
}

func beginMarker(typ string) string { return "-----BEGIN " + typ + "-----" }
func endMarker(typ string) string   { return "-----END " + typ + "-----" }
