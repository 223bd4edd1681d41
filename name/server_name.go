package name

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// maxNameLength is the longest DNS name, in octets, accepted as a server name.
const maxNameLength = 255

// maxAtomLength is the longest single DNS label accepted as part of a server
// name.
const maxAtomLength = 63

// ServerName is a normalized TLS server name, as presented by a client during
// the handshake and verified against the peer's certificate.
type ServerName struct {
	// Unicode is the lowercase, human-readable form of the name.
	Unicode string

	// Punycode is the ASCII form of the name, suitable for SNI and for
	// comparison against certificate SANs.
	Punycode string

	// IsIP is true if the name is an IPv4 or IPv6 address literal rather than
	// a DNS name. Unicode and Punycode both hold the address verbatim.
	IsIP bool
}

// Parse produces a ServerName value from a string, or panics if
// it is unable to do so.
func Parse(name string) ServerName {
	normalized, err := TryParse(name)
	if err != nil {
		panic(err)
	}

	return normalized
}

// TryParse attempts to produce a ServerName value from a string.
//
// IP literals are accepted as-is. Anything else must be a syntactically valid
// DNS name once converted to its IDNA ASCII form. A single trailing dot, as in
// a fully qualified name, is removed.
func TryParse(name string) (ServerName, error) {
	if ip := net.ParseIP(name); ip != nil {
		return ServerName{
			Unicode:  name,
			Punycode: name,
			IsIP:     true,
		}, nil
	}

	var normalized ServerName
	var err error

	lowercase := strings.ToLower(strings.TrimSuffix(name, "."))
	normalized.Punycode, err = idna.ToASCII(lowercase)
	if err != nil {
		return ServerName{}, fmt.Errorf("invalid server name '%s': %w", name, err)
	} else if !isDomainName(normalized.Punycode) {
		return ServerName{}, fmt.Errorf("invalid server name '%s'", name)
	}

	normalized.Unicode, err = idna.ToUnicode(lowercase)
	if err != nil {
		return ServerName{}, fmt.Errorf("invalid server name '%s': %w", name, err)
	}

	return normalized, nil
}

// String returns the ASCII form of the name, as used for SNI.
func (n ServerName) String() string {
	return n.Punycode
}

// isDomainName checks if the given domain name is valid.
func isDomainName(domainName string) bool {
	if len(domainName) == 0 || len(domainName) > maxNameLength {
		return false
	}

	hasLetter := false
	atomLength := 0
	previousChar := byte('.')

	for index := 0; index < len(domainName); index++ {
		char := domainName[index]

		switch {
		case 'a' <= char && char <= 'z':
			fallthrough
		case 'A' <= char && char <= 'Z':
			fallthrough
		case char == '_':
			hasLetter = true
			fallthrough
		case '0' <= char && char <= '9':
			atomLength++
		case char == '-':
			// Byte before dash cannot be dot.
			if previousChar == '.' {
				return false
			}
			atomLength++
		case char == '.':
			// Byte before dot cannot be dot, dash.
			if previousChar == '.' || previousChar == '-' {
				return false
			} else if atomLength > maxAtomLength || atomLength == 0 {
				return false
			}
			atomLength = 0
		default:
			return false
		}

		previousChar = char
	}

	return hasLetter &&
		previousChar != '-' &&
		previousChar != '.' &&
		atomLength <= maxAtomLength
}
