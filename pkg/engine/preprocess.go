package engine

import "strings"

// kwPrefix marks keyword arguments after preprocessing.
const kwPrefix = "__kw_"

// preprocessor rewrites model source into something zygomys accepts:
//
//   - :name becomes the string "__kw_name", so keywords never collide with
//     user variables. := is left alone.
//   - A hyphen between identifier characters becomes an underscore
//     (lock-uv-box -> lock_uv_box); zygomys reads a bare hyphen as minus.
//   - ; and ;; line comments become // comments.
//
// String literals and comment bodies are copied untouched.
type preprocessor struct {
	src []byte
	pos int
	out strings.Builder
}

func preprocessSource(source string) string {
	p := &preprocessor{src: []byte(source)}
	p.out.Grow(len(source) + len(source)/4)
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == '"':
			p.quoted('"', true)
		case c == '`':
			p.quoted('`', false)
		case c == ';':
			p.comment()
		case c == ':' && p.keyword():
		case c == '-' && p.kebab():
		default:
			p.out.WriteByte(c)
			p.pos++
		}
	}
	return p.out.String()
}

// quoted copies a literal opened by delim, including both delimiters.
func (p *preprocessor) quoted(delim byte, escapes bool) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && p.src[p.pos] != delim {
		if escapes && p.src[p.pos] == '\\' && p.pos+1 < len(p.src) {
			p.pos++
		}
		p.pos++
	}
	if p.pos < len(p.src) {
		p.pos++
	}
	p.out.Write(p.src[start:p.pos])
}

func (p *preprocessor) comment() {
	for p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	end := p.pos
	for end < len(p.src) && p.src[end] != '\n' {
		end++
	}
	p.out.WriteString("//")
	p.out.Write(p.src[p.pos:end])
	p.pos = end
}

// keyword handles a colon at p.pos. It reports false when the colon is
// ordinary text.
func (p *preprocessor) keyword() bool {
	if p.pos+1 >= len(p.src) {
		return false
	}
	next := p.src[p.pos+1]
	if next == '=' {
		p.out.WriteString(":=")
		p.pos += 2
		return true
	}
	if !isLetter(next) {
		return false
	}
	end := p.pos + 1
	for end < len(p.src) && isKWChar(p.src[end]) {
		end++
	}
	p.out.WriteByte('"')
	p.out.WriteString(kwPrefix)
	p.out.Write(p.src[p.pos+1 : end])
	p.out.WriteByte('"')
	p.pos = end
	return true
}

// kebab turns a hyphen joining two identifier characters into an
// underscore. A minus sign before a number or after a space is kept.
func (p *preprocessor) kebab() bool {
	if p.pos == 0 || p.pos+1 >= len(p.src) {
		return false
	}
	if !isIdentChar(p.src[p.pos-1]) || !isLetter(p.src[p.pos+1]) {
		return false
	}
	p.out.WriteByte('_')
	p.pos++
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
