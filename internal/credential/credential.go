package credential

import (
	"sort"
	"strings"
)

// Set maps a provider name to a secret. A missing or empty entry means no credential.
type Set map[string]string

// aliases accepts the key names browsers of the original frontend send.
var aliases = map[string]string{
	"google": "gemini",
}

// FromRequest builds a Set from caller-supplied keys, lower-casing names,
// resolving aliases and dropping empty secrets.
func FromRequest(raw map[string]string) Set {
	s := make(Set, len(raw))
	for name, secret := range raw {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		s[name] = secret
	}
	return s
}

// Has reports whether a non-empty secret exists for the provider.
func (s Set) Has(name string) bool {
	return s[name] != ""
}

// Len counts the non-empty entries.
func (s Set) Len() int {
	n := 0
	for _, v := range s {
		if v != "" {
			n++
		}
	}
	return n
}

// Names returns the providers with a non-empty secret, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k, v := range s {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve picks the secret for a provider. A caller override wins over the
// server default; ok is false when neither source has one.
func Resolve(provider, serverDefault string, overrides Set) (string, bool) {
	if v := overrides[provider]; v != "" {
		return v, true
	}
	if serverDefault != "" {
		return serverDefault, true
	}
	return "", false
}
