package dotenv

import (
	"fmt"
	"strings"
)

// ParseError reports a point in the source where the dotenv grammar was
// violated. Line and Col are 1-based; Offset is the byte offset into the
// source.
type ParseError struct {
	Line   int
	Col    int
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

// Parse parses source as a dotenv file.
//
// The grammar recognizes blank lines, full-line and trailing comments,
// and definitions of the form `[export ]NAME=VALUE` where VALUE is
// unquoted, single-quoted, or double-quoted. Values may not span lines.
//
// Definitions are resolved top to bottom: expansion inside a value sees
// only the parameters defined earlier in the file. When a name is defined
// more than once the later definition wins entirely.
func Parse(source string) (*Document, error) {
	p := &parser{src: source}
	doc := &Document{
		source:     source,
		params:     make(map[string]string),
		valueSpans: make(map[string]span),
		referenced: make(map[string]struct{}),
	}

	// Definition order per name, used to distinguish forward references
	// from self references once the whole file has been read.
	defOrder := make(map[string]int)
	// Unbound names referenced by each name's current definition.
	unboundRefs := make(map[string][]string)
	defCount := 0

	for !p.eof() {
		p.skipHorizontal()
		if p.eof() {
			break
		}
		switch {
		case p.peek() == '\n':
			p.next()
		case p.peek() == '#':
			p.skipLine()
		default:
			name, raw, valueSpan, quote, err := p.definition()
			if err != nil {
				return nil, err
			}

			var expanded, unbound []string
			value := resolveValue(raw, quote, doc.params, func(ref string, bound bool) {
				if bound {
					expanded = append(expanded, ref)
				} else {
					unbound = append(unbound, ref)
				}
			})

			// Names baked into this value can no longer be replaced in
			// place; an in-place edit would not propagate here.
			for _, ref := range expanded {
				doc.referenced[ref] = struct{}{}
			}
			// A fresh definition is always replaceable, even when it
			// expanded its own previous value.
			delete(doc.referenced, name)

			doc.params[name] = value
			doc.valueSpans[name] = valueSpan
			defCount++
			defOrder[name] = defCount
			unboundRefs[name] = unbound
		}
	}

	// A definition that referenced a name defined later in the file baked
	// in an empty expansion; replacing it in place would hide that the
	// value is stale, so it is treated like the expanded names above.
	for name, refs := range unboundRefs {
		for _, ref := range refs {
			if order, defined := defOrder[ref]; defined && order > defOrder[name] {
				doc.referenced[name] = struct{}{}
				break
			}
		}
	}

	// Referenced names keep their values but lose their spans: the writer
	// must append them rather than edit in place.
	for name := range doc.referenced {
		delete(doc.valueSpans, name)
	}

	return doc, nil
}

// quoteKind identifies how a value was delimited in the source.
type quoteKind int

const (
	quoteNone quoteKind = iota
	quoteSingle
	quoteDouble
)

// resolveValue applies expansion and unescaping according to the quoting
// style. Single-quoted values are verbatim.
func resolveValue(raw string, quote quoteKind, params map[string]string, observe func(string, bool)) string {
	if quote == quoteSingle {
		return raw
	}
	return Unescape(expand(raw, params, observe))
}

// parser is a byte-offset scanner over dotenv source.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) next() byte {
	c := p.src[p.pos]
	p.pos++
	return c
}

// skipHorizontal consumes spaces, tabs, and carriage returns.
func (p *parser) skipHorizontal() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r':
			p.pos++
		default:
			return
		}
	}
}

// skipLine consumes everything up to and including the next newline.
func (p *parser) skipLine() {
	for !p.eof() && p.next() != '\n' {
	}
}

// errorf builds a ParseError at the given byte offset.
func (p *parser) errorf(offset int, format string, args ...any) *ParseError {
	line := 1 + strings.Count(p.src[:offset], "\n")
	col := offset - strings.LastIndexByte(p.src[:offset], '\n')
	return &ParseError{
		Line:   line,
		Col:    col,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// definition parses one `[export ]NAME=VALUE` line. It returns the name,
// the raw (still quoted-form) value text, the byte span the value occupies
// in the source, and the quoting style.
func (p *parser) definition() (name, raw string, valueSpan span, quote quoteKind, err error) {
	name, err = p.varName()
	if err != nil {
		return "", "", span{}, quoteNone, err
	}

	// `export` only acts as a keyword when followed by whitespace;
	// `export=1` defines a variable named export.
	if name == "export" && !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.skipHorizontal()
		name, err = p.varName()
		if err != nil {
			return "", "", span{}, quoteNone, err
		}
	}

	if p.eof() || p.peek() != '=' {
		return "", "", span{}, quoteNone, p.errorf(p.pos, "expected '=' after variable name %q", name)
	}
	p.next()

	raw, valueSpan, quote, err = p.value()
	if err != nil {
		return "", "", span{}, quoteNone, err
	}

	// Only trailing whitespace, a comment, or the line end may follow.
	p.skipHorizontal()
	if !p.eof() {
		switch p.peek() {
		case '\n':
			p.next()
		case '#':
			p.skipLine()
		default:
			return "", "", span{}, quoteNone, p.errorf(p.pos, "unexpected character %q after value", p.peek())
		}
	}

	return name, raw, valueSpan, quote, nil
}

// varName parses a variable name: underscore or letter, then underscores,
// letters, and digits.
func (p *parser) varName() (string, error) {
	start := p.pos
	if p.eof() || !isNameStartByte(p.peek()) {
		return "", p.errorf(p.pos, "expected variable name")
	}
	p.pos++
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

// value parses one value in any of the three forms and returns its raw
// text with delimiting quotes stripped, plus the source span including
// the quotes.
func (p *parser) value() (string, span, quoteKind, error) {
	start := p.pos
	if !p.eof() {
		switch p.peek() {
		case '\'':
			raw, err := p.quoted('\'', false)
			return raw, span{start, p.pos}, quoteSingle, err
		case '"':
			raw, err := p.quoted('"', true)
			return raw, span{start, p.pos}, quoteDouble, err
		}
	}
	raw := p.unquoted()
	return raw, span{start, p.pos}, quoteNone, nil
}

// quoted parses a quoted value. Escapes only apply inside double quotes.
// A newline before the closing quote is an unterminated quote: values may
// not span lines.
func (p *parser) quoted(delim byte, escapes bool) (string, error) {
	open := p.pos
	p.next()
	start := p.pos
	for !p.eof() {
		switch c := p.peek(); {
		case c == delim:
			raw := p.src[start:p.pos]
			p.next()
			return raw, nil
		case c == '\n':
			return "", p.errorf(open, "unterminated %q quote", rune(delim))
		case escapes && c == '\\':
			p.next()
			if !p.eof() && p.peek() != '\n' {
				p.next()
			}
		default:
			p.next()
		}
	}
	return "", p.errorf(open, "unterminated %q quote", rune(delim))
}

// unquoted parses an unquoted value: anything up to the line end or a
// trailing comment, with trailing whitespace excluded. Internal whitespace
// is part of the value; a '#' only starts a comment when whitespace
// separates it from the value text. A backslash keeps the following
// character. The value may be empty.
func (p *parser) unquoted() string {
	start := p.pos
	end := p.pos // position after the last value character
	for !p.eof() {
		switch c := p.peek(); c {
		case '\n':
			p.pos = end
			return p.src[start:end]
		case ' ', '\t', '\r':
			p.pos++
		case '#':
			if p.pos > end {
				// Whitespace ran since the last value character, so
				// this begins a trailing comment.
				p.pos = end
				return p.src[start:end]
			}
			p.pos++
			end = p.pos
		case '\\':
			p.pos++
			if !p.eof() && p.peek() != '\n' {
				p.pos++
			}
			end = p.pos
		default:
			p.pos++
			end = p.pos
		}
	}
	p.pos = end
	return p.src[start:end]
}

func isNameStartByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStartByte(c) || (c >= '0' && c <= '9')
}
