package dotenv

import (
	"strings"
	"unicode"
)

// Expand performs bash-style parameter expansion on s.
//
// Both `$NAME` and `${NAME}` forms are recognized. A reference to a bound
// name is replaced with its value; a reference to an unbound name produces
// nothing, matching the shell's expand-to-empty behavior for undefined
// parameters. Substituted values are not rescanned, so expansion never
// recurses.
//
// Backslash escaping is honored but not consumed: `\$` passes both
// characters through unexpanded so that a later Unescape pass can strip the
// backslash. A lone trailing `$` is emitted literally, and an unterminated
// `${` sequence is emitted verbatim.
func Expand(s string, params map[string]string) string {
	return expand(s, params, nil)
}

// expand is Expand with an observer hook. The observer fires once per
// parameter reference with the name and whether it was bound at the time.
// The parser uses it to track which names a value baked in and which names
// were referenced before being defined.
//
// Invalid braced references (a disallowed character appeared before the
// closing brace) are not reported; they are malformed text, not references.
func expand(s string, params map[string]string, observe func(name string, bound bool)) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	i := 0
	for i < len(runes) {
		c := runes[i]

		// Escaped character: keep the backslash and pass the next
		// character through without inspecting it.
		if c == '\\' {
			b.WriteRune(c)
			i++
			if i < len(runes) {
				b.WriteRune(runes[i])
				i++
			}
			continue
		}

		if c != '$' {
			b.WriteRune(c)
			i++
			continue
		}

		// Start of a possible expansion.
		i++
		if i < len(runes) && runes[i] == '{' {
			i = expandBraced(&b, runes, i+1, params, observe)
			continue
		}
		if i < len(runes) && isNameStart(runes[i]) {
			i = expandUnbraced(&b, runes, i, params, observe)
			continue
		}

		// Lone '$' with nothing expandable after it.
		b.WriteRune('$')
	}

	return b.String()
}

// expandUnbraced consumes a `$NAME` reference starting at the first name
// character and returns the index after it.
func expandUnbraced(b *strings.Builder, runes []rune, i int, params map[string]string, observe func(string, bool)) int {
	start := i
	for i < len(runes) && isNameChar(runes[i]) {
		i++
	}
	name := string(runes[start:i])

	value, ok := params[name]
	if observe != nil {
		observe(name, ok)
	}
	if ok {
		b.WriteString(value)
	}
	// Unbound: the whole token produces nothing.
	return i
}

// expandBraced consumes a `${NAME}` reference starting just after the brace
// and returns the index after the closing brace (or after the input if no
// closing brace was found).
func expandBraced(b *strings.Builder, runes []rune, i int, params map[string]string, observe func(string, bool)) int {
	var name strings.Builder
	invalid := false

	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '}':
			i++
			if invalid {
				// A disallowed character poisoned the match; even a
				// valid trailing name cannot resolve.
				return i
			}
			value, ok := params[name.String()]
			if observe != nil {
				observe(name.String(), ok)
			}
			if ok {
				b.WriteString(value)
			}
			return i
		case isNameChar(c):
			name.WriteRune(c)
			i++
		default:
			invalid = true
			i++
		}
	}

	// End of input before the closing brace: re-emit what was matched.
	b.WriteString("${")
	b.WriteString(name.String())
	return i
}

// isNameStart reports whether c can begin a parameter name.
func isNameStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

// isNameChar reports whether c can continue a parameter name.
func isNameChar(c rune) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
