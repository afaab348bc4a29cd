package markup

import (
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenChar
	tokenCommand
	tokenOpen
	tokenClose
	tokenParam
)

type token struct {
	kind tokenKind
	text string
}

// scanner splits math markup into tokens. Whitespace is insignificant in
// math mode and is skipped.
type scanner struct {
	src string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) next() token {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return token{kind: tokenEOF}
	}

	start := s.pos
	switch c := s.src[s.pos]; {
	case c == '{':
		s.pos++
		return token{kind: tokenOpen, text: "{"}
	case c == '}':
		s.pos++
		return token{kind: tokenClose, text: "}"}
	case c == '\\':
		s.pos++
		if s.pos >= len(s.src) {
			return token{kind: tokenChar, text: `\`}
		}
		if isLetter(s.src[s.pos]) {
			for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
				s.pos++
			}
		} else {
			_, size := utf8.DecodeRuneInString(s.src[s.pos:])
			s.pos += size
		}
		return token{kind: tokenCommand, text: s.src[start:s.pos]}
	case c == '#' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]):
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokenParam, text: s.src[start:s.pos]}
	default:
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		s.pos += size
		return token{kind: tokenChar, text: s.src[start:s.pos]}
	}
}

// argument reads one macro argument as raw text: the inside of a balanced
// braced group, or a single token. found is false at the end of input or
// before a closing brace; closed is false for an unterminated group.
func (s *scanner) argument() (text string, found, closed bool) {
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] == '}' {
		return "", false, true
	}
	if s.src[s.pos] != '{' {
		return s.next().text, true, true
	}

	start := s.pos + 1
	depth := 0
	for i := s.pos; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s.pos = i + 1
				return s.src[start:i], true, true
			}
		}
	}

	s.pos = len(s.src)
	return s.src[start:], true, false
}

// normalize rewrites markup the way a parsed tree serializes it: whitespace
// is dropped except where a control word meets a letter, and unterminated
// groups are closed. Parameters are dropped unless keepParams is set, since
// they parse as argument markers that serialize to nothing.
func normalize(src string, keepParams bool) string {
	var w markupWriter
	depth := 0
	sc := &scanner{src: src}
	for tok := sc.next(); tok.kind != tokenEOF; tok = sc.next() {
		switch tok.kind {
		case tokenParam:
			if !keepParams {
				continue
			}
		case tokenOpen:
			depth++
		case tokenClose:
			if depth == 0 {
				continue
			}
			depth--
		}
		w.write(tok.text)
	}
	for ; depth > 0; depth-- {
		w.write("}")
	}
	return w.String()
}

// markupWriter joins markup fragments, separating a control word from a
// following letter so it is not read back as a longer command.
type markupWriter struct {
	sb        strings.Builder
	afterWord bool
}

func (w *markupWriter) write(text string) {
	if text == "" {
		return
	}
	if w.afterWord && isLetter(text[0]) {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(text)
	w.afterWord = endsWithControlWord(text)
}

func (w *markupWriter) String() string {
	return w.sb.String()
}

func endsWithControlWord(text string) bool {
	i := len(text)
	for i > 0 && isLetter(text[i-1]) {
		i--
	}
	if i == len(text) || i == 0 || text[i-1] != '\\' {
		return false
	}
	backslashes := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
