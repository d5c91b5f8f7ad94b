package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"ictal/internal/sequence"
)

// ErrAmbiguousVerdict indicates a decide answer that is neither clearly
// positive nor clearly negative.
var ErrAmbiguousVerdict = errors.New("ambiguous verdict")

// ErrMalformed indicates a transcript that cannot be parsed.
var ErrMalformed = errors.New("malformed transcript")

// Segment is one observe/decide exchange.
type Segment struct {
	Index        int     `json:"index"`
	StartSeconds int     `json:"start_seconds"`
	EndSeconds   int     `json:"end_seconds"`
	Source       string  `json:"source"`
	Observation  string  `json:"observation"`
	Decision     string  `json:"decision"`
	Elapsed      float64 `json:"elapsed_seconds"`
}

// Transcript is a parsed inference log for one video.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Total    float64   `json:"total_seconds"`
}

var (
	headerPattern  = regexp.MustCompile(`^\*\*\*\s*(\d+)\s*[–-]\s*(\d+)s\s+(.*?)\s*\*\*\*$`)
	elapsedPattern = regexp.MustCompile(`^Time for this inference:\s*([0-9.]+)\s*seconds`)
	totalPattern   = regexp.MustCompile(`^Total time for this video:\s*([0-9.]+)\s*seconds`)
)

type turn int

const (
	turnNone turn = iota
	turnObservePrompt
	turnObservation
	turnDecidePrompt
	turnDecision
)

var turnMarkers = []struct {
	prefix string
	turn   turn
}{
	{"User1:", turnObservePrompt},
	{"Assistant1:", turnObservation},
	{"User2:", turnDecidePrompt},
	{"Assistant2:", turnDecision},
}

// Parse reads a transcript. Lines before the first segment header, such as
// the system prompt, are ignored.
func Parse(r io.Reader) (Transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		tr      Transcript
		current *Segment
		active  turn
		buf     strings.Builder
		lineNum int
	)

	flush := func() {
		if current == nil {
			return
		}
		text := strings.TrimSpace(buf.String())
		switch active {
		case turnObservation:
			current.Observation = text
		case turnDecision:
			current.Decision = text
		}
		buf.Reset()
		active = turnNone
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			if end < start {
				return Transcript{}, fmt.Errorf("%w: line %d: segment ends before it starts", ErrMalformed, lineNum)
			}
			tr.Segments = append(tr.Segments, Segment{
				Index:        len(tr.Segments),
				StartSeconds: start,
				EndSeconds:   end,
				Source:       m[3],
			})
			current = &tr.Segments[len(tr.Segments)-1]
			continue
		}
		if m := totalPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return Transcript{}, fmt.Errorf("%w: line %d: total time %q", ErrMalformed, lineNum, m[1])
			}
			tr.Total = v
			current = nil
			continue
		}
		if current == nil {
			continue
		}
		if m := elapsedPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return Transcript{}, fmt.Errorf("%w: line %d: inference time %q", ErrMalformed, lineNum, m[1])
			}
			current.Elapsed = v
			continue
		}
		if next, rest, ok := cutTurn(trimmed); ok {
			flush()
			active = next
			buf.WriteString(rest)
			continue
		}
		if active != turnNone {
			buf.WriteByte('\n')
			buf.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	flush()
	return tr, nil
}

func cutTurn(line string) (turn, string, bool) {
	for _, marker := range turnMarkers {
		if rest, ok := strings.CutPrefix(line, marker.prefix); ok {
			return marker.turn, strings.TrimSpace(rest), true
		}
	}
	return turnNone, "", false
}

var (
	positiveWords = map[string]struct{}{"yes": {}, "present": {}, "true": {}, "1": {}, "positive": {}}
	negativeWords = map[string]struct{}{"no": {}, "not": {}, "absent": {}, "false": {}, "0": {}, "negative": {}, "none": {}}
)

// Verdict maps a decide answer to 1 or 0 using its first decisive word.
func Verdict(answer string) (int, error) {
	words := strings.FieldsFunc(cases.Fold().String(answer), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			return 1, nil
		}
		if _, ok := negativeWords[w]; ok {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrAmbiguousVerdict, truncate(answer, 60))
}

// Predictions returns one verdict per segment in transcript order. Ambiguous
// answers count as 0 and their segment indices are returned.
func (t Transcript) Predictions() (sequence.Binary, []int) {
	preds := make(sequence.Binary, len(t.Segments))
	var ambiguous []int
	for i, seg := range t.Segments {
		v, err := Verdict(seg.Decision)
		if err != nil {
			ambiguous = append(ambiguous, i)
			continue
		}
		preds[i] = v
	}
	return preds, ambiguous
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
