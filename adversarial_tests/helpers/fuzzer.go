package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer provides utilities for generating adversarial input strings
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new Fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// FuzzUsername returns usernames that must all be rejected before any request.
func (f *Fuzzer) FuzzUsername() []string {
	cases := []string{
		"",
		strings.Repeat("a", 31),
		"has space",
		"semi;colon",
		"slash/name",
		"question?",
		"hash#tag",
		"percent%2F",
		"émile",
		"name\n",
	}
	cases = append(cases, f.GeneratePathTraversals()...)
	cases = append(cases, f.GenerateUnicodeAttacks()...)
	for _, s := range f.GenerateControlCharString() {
		cases = append(cases, "user"+s)
	}
	return cases
}

// FuzzMediaID returns media ids that must all be rejected before any request.
func (f *Fuzzer) FuzzMediaID() []string {
	cases := []string{
		"",
		"_",
		"17_",
		"_555",
		"17__555",
		"17_555_1",
		"-17",
		"17 555",
		"0x11",
		"17_555?x=1",
		"17/../555",
		"\uFF11\uFF17",
	}
	cases = append(cases, f.GeneratePathTraversals()...)
	cases = append(cases, f.GenerateSQLInjections()...)
	return cases
}

// FuzzUserAgent returns user agents that must be rejected at construction.
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		"Instagram 10.26.0\r\nX-Injected: 1",
		"Instagram 10.26.0\nHost: evil.example",
		"Instagram\r",
		strings.Repeat("A", 1024),
	}
}

// GenerateRandomString generates a random string of the given length with specified character types
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		special = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"
	)

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharString generates strings carrying each ASCII control character
func (f *Fuzzer) GenerateControlCharString() []string {
	var results []string
	for i := range 32 {
		char := rune(i)
		if unicode.IsControl(char) {
			results = append(results, "test"+string(char)+"string")
		}
	}
	return append(results, "test\x7fstring")
}

// GenerateUnicodeAttacks generates strings with various Unicode attack patterns
func (f *Fuzzer) GenerateUnicodeAttacks() []string {
	return []string{
		"test\u200Bstring", // zero-width space
		"test\u200Dstring", // zero-width joiner
		"test\uFEFFstring", // BOM
		"test\u202Estring", // right-to-left override
		"cafe\u0301",       // combining accent
		"g\u043E\u043Egle", // Cyrillic o
		"test\u0000string",
	}
}

// GenerateSQLInjections generates common SQL injection patterns
func (f *Fuzzer) GenerateSQLInjections() []string {
	return []string{
		"'; DROP TABLE users--",
		"' OR '1'='1",
		"admin'--",
		"' UNION SELECT NULL--",
		"\" OR \"1\"=\"1",
	}
}

// GeneratePathTraversals generates path traversal attack patterns
func (f *Fuzzer) GeneratePathTraversals() []string {
	return []string{
		"../../etc/passwd",
		"..\\..\\windows\\system32",
		"..%2F..%2Fetc%2Fpasswd",
		"....//....//etc/passwd",
		"/etc/passwd",
	}
}
