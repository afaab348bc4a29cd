package matcher

import "fmt"

// Ambiguity describes two placeholders with no literal text between them.
// Non-greedy matching always hands the first one the shortest capture, so
// such templates can split a body differently from how it was written.
type Ambiguity struct {
	Offset int // byte offset of the second placeholder
	Left   int
	Right  int
}

func (a Ambiguity) String() string {
	return fmt.Sprintf("placeholders #%d and #%d are adjacent at offset %d", a.Left, a.Right, a.Offset)
}

// Ambiguities reports adjacent placeholder pairs in template. It is a
// diagnostic only; Match accepts ambiguous templates unchanged.
func Ambiguities(template string) []Ambiguity {
	locs := placeholderRe.FindAllStringSubmatchIndex(template, -1)

	var result []Ambiguity
	for i := 1; i < len(locs); i++ {
		if locs[i-1][1] != locs[i][0] {
			continue
		}
		result = append(result, Ambiguity{
			Offset: locs[i][0],
			Left:   placeholderNumber(template[locs[i-1][2]:locs[i-1][3]]),
			Right:  placeholderNumber(template[locs[i][2]:locs[i][3]]),
		})
	}

	return result
}
