package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const unknownIP = "0.0.0.0"

// RequestInfo is the header-derived view of a beacon request. It holds plain
// strings only, so nothing request-scoped leaks into background work.
type RequestInfo struct {
	Method         string
	Protocol       string
	ClientIP       string // Client-IP header
	ForwardedFor   string // X-Forwarded-For header
	RemoteAddr     string // socket address as reported by the server
	AcceptEncoding string
	AcceptLanguage string
	UserAgent      string
	Accept         string
	Referrer       string
	RequestID      string
}

// ResolveIP picks the caller address. Candidates are checked in order and a
// later non-empty candidate overwrites an earlier one: Client-IP, then
// X-Forwarded-For, then the remote address.
func ResolveIP(r RequestInfo) string {
	address := ""
	for _, candidate := range []string{r.ClientIP, r.ForwardedFor, r.RemoteAddr} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			address = candidate
		}
	}
	if address == "" {
		return unknownIP
	}
	return address
}

// GenerateFingerprint hashes IP, protocol, Accept-Encoding, Accept-Language,
// User-Agent and Accept, in that order, into a lowercase hex SHA-256 digest.
func GenerateFingerprint(r RequestInfo) string {
	var b strings.Builder
	b.WriteString(ResolveIP(r))
	b.WriteString(r.Protocol)
	b.WriteString(r.AcceptEncoding)
	b.WriteString(r.AcceptLanguage)
	b.WriteString(r.UserAgent)
	b.WriteString(r.Accept)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
