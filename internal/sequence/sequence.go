package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput marks sequences or parameters that cannot be processed.
var ErrInvalidInput = errors.New("invalid input")

// Binary is an ordered per-segment prediction or annotation sequence.
type Binary []int

// Run is a maximal half-open range [Start, End) of consecutive 1s.
type Run struct {
	Start int
	End   int
}

// Len returns the number of segments covered by the run.
func (r Run) Len() int {
	return r.End - r.Start
}

// Validate reports the first element outside {0, 1}.
func (b Binary) Validate() error {
	for i, v := range b {
		if v != 0 && v != 1 {
			return elementError(i, v)
		}
	}
	return nil
}

// Runs enumerates the maximal runs of 1s in order. Non-binary values end a run.
func (b Binary) Runs() []Run {
	var runs []Run
	n := len(b)
	i := 0
	for i < n {
		if b[i] != 1 {
			i++
			continue
		}
		start := i
		for i < n && b[i] == 1 {
			i++
		}
		runs = append(runs, Run{Start: start, End: i})
	}
	return runs
}

// Ones counts positive segments.
func (b Binary) Ones() int {
	count := 0
	for _, v := range b {
		if v == 1 {
			count++
		}
	}
	return count
}

// Clone returns an independent copy.
func (b Binary) Clone() Binary {
	if b == nil {
		return nil
	}
	out := make(Binary, len(b))
	copy(out, b)
	return out
}

// Equal reports whether both sequences hold the same values.
func (b Binary) Equal(other Binary) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the sequence as a list literal, e.g. "[1, 0, 1]".
func (b Binary) String() string {
	var sb strings.Builder
	sb.Grow(2 + len(b)*3)
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalCSV renders the list literal form for CSV encoders.
func (b Binary) MarshalCSV() (string, error) {
	return b.String(), nil
}

// UnmarshalCSV decodes a list literal cell.
func (b *Binary) UnmarshalCSV(value string) error {
	parsed, err := Parse(value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func elementError(index, value int) error {
	return fmt.Errorf("%w: element %d is %d, want 0 or 1", ErrInvalidInput, index, value)
}
