package metrics

import (
	"fmt"
	"math"

	"ictal/internal/sequence"
)

// Counts holds pooled confusion-matrix totals.
type Counts struct {
	TP int `json:"true_positives"`
	FP int `json:"false_positives"`
	TN int `json:"true_negatives"`
	FN int `json:"false_negatives"`
}

// Result carries the counts and the derived percentages. A metric whose
// denominator is zero reports 0 with its Defined flag false.
type Result struct {
	Counts
	Specificity        float64 `json:"specificity"`
	Recall             float64 `json:"recall"`
	SpecificityDefined bool    `json:"specificity_defined"`
	RecallDefined      bool    `json:"recall_defined"`
}

// Pair is one video's ground truth and the prediction under evaluation.
type Pair struct {
	GT   sequence.Binary
	Pred sequence.Binary
}

// Add classifies the overlapping prefix of gt and pred into c. Positions past
// min(len(gt), len(pred)) are ignored.
func (c *Counts) Add(gt, pred sequence.Binary) error {
	n := min(len(gt), len(pred))
	var delta Counts
	for i := 0; i < n; i++ {
		g, p := gt[i], pred[i]
		switch {
		case g == 1 && p == 1:
			delta.TP++
		case g == 0 && p == 1:
			delta.FP++
		case g == 0 && p == 0:
			delta.TN++
		case g == 1 && p == 0:
			delta.FN++
		default:
			return fmt.Errorf("%w: position %d has gt=%d pred=%d", sequence.ErrInvalidInput, i, g, p)
		}
	}
	c.Merge(delta)
	return nil
}

// Merge adds other into c.
func (c *Counts) Merge(other Counts) {
	c.TP += other.TP
	c.FP += other.FP
	c.TN += other.TN
	c.FN += other.FN
}

// Total returns the number of compared positions.
func (c Counts) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Result derives specificity and recall, each rounded to two decimals.
func (c Counts) Result() Result {
	res := Result{Counts: c}
	if denom := c.TN + c.FP; denom > 0 {
		res.Specificity = percent(c.TN, denom)
		res.SpecificityDefined = true
	}
	if denom := c.TP + c.FN; denom > 0 {
		res.Recall = percent(c.TP, denom)
		res.RecallDefined = true
	}
	return res
}

// Evaluate pools every pair and returns the derived metrics. An empty
// collection yields zero metrics with both Defined flags false. A pair with
// a non-binary value in its compared range aborts with
// sequence.ErrInvalidInput; counts from other pairs are discarded.
func Evaluate(pairs []Pair) (Result, error) {
	var total Counts
	for i, pair := range pairs {
		if err := total.Add(pair.GT, pair.Pred); err != nil {
			return Result{}, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	return total.Result(), nil
}

func percent(num, denom int) float64 {
	return round2(float64(num) / float64(denom) * 100)
}

// round2 rounds to two decimals, ties to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
