package sequence

import (
	"errors"
	"reflect"
	"testing"
)

func TestRunsFindsMaximalRunsIncludingTail(t *testing.T) {
	got := Binary{1, 1, 0, 1, 0, 0, 1, 1, 1}.Runs()
	want := []Run{{Start: 0, End: 2}, {Start: 3, End: 4}, {Start: 6, End: 9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Runs() = %v, want %v", got, want)
	}
	if got[2].Len() != 3 {
		t.Fatalf("tail run length = %d, want 3", got[2].Len())
	}
	if runs := (Binary{}).Runs(); len(runs) != 0 {
		t.Fatalf("expected no runs for empty sequence, got %v", runs)
	}
}

func TestValidateReportsFirstBadElement(t *testing.T) {
	if err := (Binary{0, 1, 1, 0}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Binary{0, 1, 5, 7}.Validate()
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := err.Error(); got != "invalid input: element 2 is 5, want 0 or 1" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Binary{1, 0, 1}
	cp := orig.Clone()
	cp[0] = 0
	if orig[0] != 1 {
		t.Fatal("Clone shares backing array")
	}
	if orig.Ones() != 2 || cp.Ones() != 1 {
		t.Fatalf("Ones mismatch: %d %d", orig.Ones(), cp.Ones())
	}
}
