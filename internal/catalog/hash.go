package catalog

import "strings"

// NormalizeHash canonicalizes a content hash to 8 lower-case hex digits.
// A 0x prefix is stripped and 16-digit hashes collapse to their low 8 digits.
// Anything else reports false and is ignored by callers.
func NormalizeHash(raw string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(raw))
	h = strings.TrimPrefix(h, "0x")
	if len(h) == 16 {
		h = h[8:]
	}
	if len(h) != 8 {
		return "", false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	return h, true
}
