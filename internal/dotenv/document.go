package dotenv

import (
	"sort"
	"strings"
	"time"
)

// span is a half-open byte range into a document's source text.
type span struct {
	start int
	end   int
}

// Document is the parsed form of one dotenv file.
//
// The original source text is retained so that edits can be written back
// with minimal disturbance: values that were parsed from a known span are
// replaced in place, everything else in the file stays byte-identical.
//
// A Document is never mutated after parsing; Replace returns new text.
type Document struct {
	source string

	// params maps each defined name to its resolved value.
	params map[string]string

	// valueSpans maps a name to the source range its last textual value
	// occupied, including any delimiting quotes. Names whose values were
	// baked into (or derived from) other definitions carry no span.
	valueSpans map[string]span

	// referenced holds names that cannot be replaced in place: either a
	// later definition expanded them, or their own value was resolved
	// against a name that had not been defined yet.
	referenced map[string]struct{}

	// lastModified is the source file's modification time, when known.
	lastModified time.Time
}

// NewDocument returns an empty document. Replace on an empty document
// appends every edit as a new definition.
func NewDocument() *Document {
	return &Document{
		params:     make(map[string]string),
		valueSpans: make(map[string]span),
		referenced: make(map[string]struct{}),
	}
}

// Source returns the original text the document was parsed from.
func (d *Document) Source() string { return d.source }

// Lookup returns the resolved value of name and whether it is defined.
func (d *Document) Lookup(name string) (string, bool) {
	value, ok := d.params[name]
	return value, ok
}

// Names returns all defined names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.params))
	for name := range d.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parameters returns a copy of the name to value mapping.
func (d *Document) Parameters() map[string]string {
	params := make(map[string]string, len(d.params))
	for name, value := range d.params {
		params[name] = value
	}
	return params
}

// LastModified returns the source file's modification time. The zero time
// means the document was not loaded from timestamped storage.
func (d *Document) LastModified() time.Time { return d.lastModified }

// Replace applies the given edits and returns the modified file text.
//
// Edits to names with a known value span are substituted in place,
// preserving quoting style and layout everywhere else in the file.
// All other edits, including entirely new names and names whose values
// depend on other definitions, are appended as fresh definitions at the
// end of the file. Names absent from edits are left untouched.
func (d *Document) Replace(edits map[string]string) string {
	type inPlace struct {
		span  span
		value string
	}
	var replaced []inPlace
	var appended []string

	for name, value := range edits {
		valueSpan, ok := d.valueSpans[name]
		if _, ref := d.referenced[name]; ok && !ref {
			replaced = append(replaced, inPlace{valueSpan, value})
		} else {
			appended = append(appended, name)
		}
	}

	// Apply in-place edits back to front so earlier spans stay valid.
	sort.Slice(replaced, func(i, j int) bool {
		return replaced[i].span.start > replaced[j].span.start
	})
	content := d.source
	for _, edit := range replaced {
		content = content[:edit.span.start] + escapeValue(edit.value) + content[edit.span.end:]
	}

	if len(appended) > 0 {
		sort.Strings(appended)

		var b strings.Builder
		b.WriteString(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			b.WriteByte('\n')
		}
		for _, name := range appended {
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(escapeValue(edits[name]))
			b.WriteByte('\n')
		}
		content = b.String()
	}

	return content
}

// escapedChars are the characters that force a value into quoted form on
// write. Each is backslash-escaped inside the quotes so that parsing the
// written text recovers the original value exactly.
const escapedChars = `\$"'`

// escapeValue renders a value for writing into a dotenv file. Values with
// no special characters and no leading or trailing whitespace are written
// bare; everything else is double-quoted with escapes.
func escapeValue(value string) string {
	if !strings.ContainsAny(value, escapedChars) && value == strings.TrimSpace(value) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, c := range value {
		if strings.ContainsRune(escapedChars, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('"')
	return b.String()
}
