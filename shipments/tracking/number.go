package tracking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	Prefix      = "CF24"
	MinSequence = 1
	MaxSequence = 999
)

// pattern is CF24, a four digit year, then a sequence of one to three digits without leading zeros.
var pattern = regexp.MustCompile(`^CF24(\d{4})([1-9]\d{0,2})$`)

// Number is a parsed tracking number.
type Number struct {
	Year     int
	Sequence int
}

func (n Number) String() string {
	return Format(n.Year, n.Sequence)
}

// YearPrefix is the part of every tracking number issued in year, e.g. CF242026.
func YearPrefix(year int) string {
	return fmt.Sprintf("%s%04d", Prefix, year)
}

func Format(year, sequence int) string {
	return YearPrefix(year) + strconv.Itoa(sequence)
}

func Parse(s string) (Number, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	year, _ := strconv.Atoi(m[1])
	sequence, err := strconv.Atoi(m[2])
	if err != nil {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	return Number{Year: year, Sequence: sequence}, nil
}

// HighestSequence returns the largest well-formed sequence among numbers carrying prefix,
// or zero when there is none. Numbers that do not parse are skipped.
func HighestSequence(prefix string, numbers []string) int {
	highest := 0
	for _, n := range numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		parsed, err := Parse(n)
		if err != nil || YearPrefix(parsed.Year) != prefix {
			continue
		}
		if parsed.Sequence > highest {
			highest = parsed.Sequence
		}
	}
	return highest
}
