package metrics

import (
	"errors"
	"testing"

	"ictal/internal/sequence"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []Pair
		want     Counts
		wantSpec float64
		wantRec  float64
	}{
		{
			name:     "one of each bucket",
			pairs:    []Pair{{GT: sequence.Binary{1, 1, 0, 0}, Pred: sequence.Binary{1, 0, 0, 1}}},
			want:     Counts{TP: 1, FP: 1, TN: 1, FN: 1},
			wantSpec: 50,
			wantRec:  50,
		},
		{
			name:     "truncates to shorter sequence",
			pairs:    []Pair{{GT: sequence.Binary{1, 0, 0, 1, 1}, Pred: sequence.Binary{1, 1, 0}}},
			want:     Counts{TP: 1, FP: 1, TN: 1},
			wantSpec: 50,
			wantRec:  100,
		},
		{
			name: "pools across videos",
			pairs: []Pair{
				{GT: sequence.Binary{1, 1, 1}, Pred: sequence.Binary{1, 1, 0}},
				{GT: sequence.Binary{0, 0, 0, 0, 0, 0}, Pred: sequence.Binary{0, 0, 0, 0, 0, 1}},
			},
			want:     Counts{TP: 2, FN: 1, TN: 5, FP: 1},
			wantSpec: 83.33,
			wantRec:  66.67,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.pairs)
			if err != nil {
				t.Fatalf("Evaluate error = %v", err)
			}
			if got.Counts != tt.want {
				t.Fatalf("Counts = %+v, want %+v", got.Counts, tt.want)
			}
			if got.Specificity != tt.wantSpec {
				t.Errorf("Specificity = %v, want %v", got.Specificity, tt.wantSpec)
			}
			if got.Recall != tt.wantRec {
				t.Errorf("Recall = %v, want %v", got.Recall, tt.wantRec)
			}
			if !got.SpecificityDefined || !got.RecallDefined {
				t.Errorf("expected both metrics defined: %+v", got)
			}
		})
	}
}

func TestEvaluateEmptyCollectionIsZero(t *testing.T) {
	got, err := Evaluate(nil)
	if err != nil {
		t.Fatalf("Evaluate(nil) error = %v", err)
	}
	if got.Specificity != 0 || got.Recall != 0 {
		t.Fatalf("expected zero metrics, got %+v", got)
	}
	if got.SpecificityDefined || got.RecallDefined {
		t.Fatalf("expected undefined flags, got %+v", got)
	}
}

func TestEvaluateFlagsSingleEmptyDenominator(t *testing.T) {
	got, err := Evaluate([]Pair{{GT: sequence.Binary{0, 0}, Pred: sequence.Binary{0, 1}}})
	if err != nil {
		t.Fatalf("Evaluate error = %v", err)
	}
	if got.RecallDefined {
		t.Fatal("recall should be undefined without positives")
	}
	if !got.SpecificityDefined || got.Specificity != 50 {
		t.Fatalf("unexpected specificity: %+v", got)
	}
}

func TestEvaluateRejectsNonBinary(t *testing.T) {
	_, err := Evaluate([]Pair{{GT: sequence.Binary{1, 0}, Pred: sequence.Binary{1, 3}}})
	if !errors.Is(err, sequence.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCountsAddIgnoresValuesPastOverlap(t *testing.T) {
	var c Counts
	if err := c.Add(sequence.Binary{1}, sequence.Binary{1, 7, 9}); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if c.Total() != 1 || c.TP != 1 {
		t.Fatalf("unexpected counts %+v", c)
	}
}

func TestResultRoundsHalvesToEven(t *testing.T) {
	tests := []struct {
		counts   Counts
		wantSpec float64
		wantRec  float64
	}{
		{counts: Counts{TP: 1, FN: 31, TN: 5, FP: 27}, wantSpec: 15.62, wantRec: 3.12},
		{counts: Counts{TP: 3, FN: 29, TN: 7, FP: 25}, wantSpec: 21.88, wantRec: 9.38},
		{counts: Counts{TP: 2, FN: 1, TN: 1, FP: 2}, wantSpec: 33.33, wantRec: 66.67},
	}
	for _, tt := range tests {
		got := tt.counts.Result()
		if got.Specificity != tt.wantSpec || got.Recall != tt.wantRec {
			t.Errorf("%+v: specificity %v recall %v, want %v / %v",
				tt.counts, got.Specificity, got.Recall, tt.wantSpec, tt.wantRec)
		}
	}
}
