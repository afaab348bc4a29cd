// Package matcher inverts macro expansion: given a definition template with
// numbered placeholders (#1..#9) and a serialized body, it recovers the
// positional arguments that would have produced the body.
package matcher

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidTemplate indicates that a macro definition template is empty.
var ErrInvalidTemplate = errors.New("invalid macro template: template is empty")

// MaxArgs is the highest placeholder number Match recovers.
const MaxArgs = 8

var placeholderRe = regexp.MustCompile(`#(\d+)`)

// compiledTemplate is the anchored pattern for a template together with the
// placeholder number bound to each capture group.
type compiledTemplate struct {
	re      *regexp.Regexp
	numbers []int
}

// compiledCache maps a template to its *compiledTemplate. It is unbounded
// and keeps every distinct template for the life of the process, which suits
// a catalog of known macros. Callers matching arbitrary user templates
// should expect it to grow with them.
var compiledCache sync.Map

// Match returns the ordered arguments that expand template into body.
//
// ok is false when body does not fit the template; that is not an error.
// Captures are trimmed, gaps in the placeholder numbering yield "" and
// trailing absent positions are dropped.
func Match(template, body string) (args []string, ok bool, err error) {
	if template == "" {
		return nil, false, ErrInvalidTemplate
	}
	if body == "" {
		return nil, false, nil
	}

	compiled := compile(template)
	groups := compiled.re.FindStringSubmatch(body)
	if groups == nil {
		return nil, false, nil
	}

	captured := make(map[int]string, len(compiled.numbers))
	for index, number := range compiled.numbers {
		// First occurrence of a repeated placeholder wins.
		if _, seen := captured[number]; seen {
			continue
		}
		captured[number] = groups[index+1]
	}

	args = make([]string, 0, MaxArgs)
	last := 0
	for number := 1; number <= MaxArgs; number++ {
		value, present := captured[number]
		if present {
			last = number
		}
		args = append(args, strings.TrimSpace(value))
	}

	return args[:last], true, nil
}

// Encode renders args as a brace-delimited argument encoding, e.g. "{a}{b}".
func Encode(args []string) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteByte('{')
		sb.WriteString(arg)
		sb.WriteByte('}')
	}
	return sb.String()
}

// Placeholders lists the placeholder numbers of template in order of
// appearance, duplicates included.
func Placeholders(template string) []int {
	var numbers []int
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		numbers = append(numbers, placeholderNumber(match[1]))
	}
	return numbers
}

// ArgCount returns the highest placeholder number used by template, capped
// at 9.
func ArgCount(template string) int {
	count := 0
	for _, number := range Placeholders(template) {
		if number > count && number <= 9 {
			count = number
		}
	}
	return count
}

func compile(template string) *compiledTemplate {
	if cached, ok := compiledCache.Load(template); ok {
		return cached.(*compiledTemplate)
	}

	var sb strings.Builder
	var numbers []int
	sb.WriteString(`^(?s:`)
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		sb.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		sb.WriteString(`(.*?)`)
		numbers = append(numbers, placeholderNumber(template[loc[2]:loc[3]]))
		last = loc[1]
	}
	sb.WriteString(regexp.QuoteMeta(template[last:]))
	sb.WriteString(`)$`)

	compiled := &compiledTemplate{
		re:      regexp.MustCompile(sb.String()),
		numbers: numbers,
	}
	actual, _ := compiledCache.LoadOrStore(template, compiled)
	return actual.(*compiledTemplate)
}

// placeholderNumber parses the digits of a placeholder. Values that overflow
// map to 0, which never falls in the recovered range.
func placeholderNumber(digits string) int {
	number, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return number
}
