package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseRequestInfo() RequestInfo {
	return RequestInfo{
		Method:         "GET",
		Protocol:       "https",
		RemoteAddr:     "203.0.113.7",
		AcceptEncoding: "gzip, deflate, br",
		AcceptLanguage: "en-US,en;q=0.9",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64)",
		Accept:         "image/avif,image/webp,*/*",
	}
}

func TestGenerateFingerprint_Deterministic(t *testing.T) {
	r := baseRequestInfo()

	first := GenerateFingerprint(r)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, GenerateFingerprint(r))
	}
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), first)
}

func TestGenerateFingerprint_EachInputMatters(t *testing.T) {
	base := GenerateFingerprint(baseRequestInfo())

	mutations := map[string]func(r *RequestInfo){
		"ip":       func(r *RequestInfo) { r.RemoteAddr = "198.51.100.1" },
		"protocol": func(r *RequestInfo) { r.Protocol = "http" },
		"encoding": func(r *RequestInfo) { r.AcceptEncoding = "identity" },
		"language": func(r *RequestInfo) { r.AcceptLanguage = "de-DE" },
		"agent":    func(r *RequestInfo) { r.UserAgent = "curl/8.0" },
		"accept":   func(r *RequestInfo) { r.Accept = "*/*" },
	}

	seen := map[string]string{base: "base"}
	for name, mutate := range mutations {
		r := baseRequestInfo()
		mutate(&r)
		fp := GenerateFingerprint(r)
		if other, dup := seen[fp]; dup {
			t.Fatalf("changing %s collided with %s", name, other)
		}
		seen[fp] = name
	}
}

func TestGenerateFingerprint_IgnoresNonFingerprintHeaders(t *testing.T) {
	a := baseRequestInfo()
	b := baseRequestInfo()
	b.Referrer = "https://partner.example/landing"
	b.RequestID = "req-1"

	assert.Equal(t, GenerateFingerprint(a), GenerateFingerprint(b))
}

func TestGenerateFingerprint_EmptyHeaders(t *testing.T) {
	assert.Equal(t, GenerateFingerprint(RequestInfo{}), GenerateFingerprint(RequestInfo{}))
}

func TestResolveIP_Precedence(t *testing.T) {
	tests := []struct {
		name string
		info RequestInfo
		want string
	}{
		{"nothing", RequestInfo{}, "0.0.0.0"},
		{"client ip only", RequestInfo{ClientIP: "10.0.0.1"}, "10.0.0.1"},
		{"forwarded overrides client ip", RequestInfo{ClientIP: "10.0.0.1", ForwardedFor: "192.0.2.5"}, "192.0.2.5"},
		{"remote overrides headers", RequestInfo{ClientIP: "10.0.0.1", ForwardedFor: "192.0.2.5", RemoteAddr: "203.0.113.9"}, "203.0.113.9"},
		{"blank values skipped", RequestInfo{ClientIP: "10.0.0.1", ForwardedFor: "  "}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIP(tt.info))
		})
	}
}
