package detector

import "sort"

// unknownClass is always present in a fitted encoder so unseen values at
// inference time map to a valid code instead of failing.
const unknownClass = "unknown"

// Encoder maps categorical string values to small integer codes. Codes are
// assigned by the alphabetical rank of each distinct observed value, with
// the reserved "unknown" class folded in.
type Encoder struct {
	codes   map[string]int
	classes []string
	unknown int
}

// FitEncoder builds an encoder from the observed values of one column.
// Refitting is wholesale; encoders are never updated incrementally.
func FitEncoder(values []string) *Encoder {
	seen := map[string]bool{unknownClass: true}
	for _, v := range values {
		seen[v] = true
	}

	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, v := range classes {
		codes[v] = i
	}
	return &Encoder{codes: codes, classes: classes, unknown: codes[unknownClass]}
}

// Encode returns the code for v, or the "unknown" code when v was not seen
// during fitting. It never fails.
func (e *Encoder) Encode(v string) int {
	if code, ok := e.codes[v]; ok {
		return code
	}
	return e.unknown
}

// Classes returns the encoder's classes in code order.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}
