package mathtree

import "strings"

// SerializeBody writes atoms back to markup in order. A space is inserted
// where a control word would otherwise run into a following letter.
func SerializeBody(atoms []Atom, opts SerializeOptions) string {
	var sb strings.Builder
	for _, atom := range atoms {
		text := atom.Serialize(opts)
		if text == "" {
			continue
		}
		if endsWithControlWord(sb.String()) && startsWithLetter(text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// endsWithControlWord reports whether s ends in a control word such as
// `\alpha`. `\\alpha` is a line break followed by letters, not a command.
func endsWithControlWord(s string) bool {
	i := len(s)
	for i > 0 && isASCIILetter(s[i-1]) {
		i--
	}
	if i == len(s) {
		return false
	}

	backslashes := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 1
}

func startsWithLetter(s string) bool {
	return s != "" && isASCIILetter(s[0])
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
