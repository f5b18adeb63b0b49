package dotenv

import "strings"

// Unescape removes one layer of backslash escaping from s.
//
// Each backslash causes the character that follows it to be emitted
// literally, whatever it is. A trailing backslash with nothing after it is
// dropped. The transformation is a single pass and cannot fail.
//
// This mirrors how a POSIX shell consumes backslashes inside double quotes:
// the backslash itself never survives into the value.
func Unescape(s string) string {
	// Fast path: nothing to unescape.
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	escaped := false
	for _, c := range s {
		if !escaped && c == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(c)
	}

	return b.String()
}
