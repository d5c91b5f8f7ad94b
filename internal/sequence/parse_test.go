package sequence

import (
	"errors"
	"testing"
)

func TestParseAcceptsListLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Binary
	}{
		{name: "bracketed", input: "[1, 0, 1]", want: Binary{1, 0, 1}},
		{name: "no spaces", input: "[1,1,0]", want: Binary{1, 1, 0}},
		{name: "padded", input: "  [ 0 , 1 ]  ", want: Binary{0, 1}},
		{name: "bare commas", input: "0,1,1", want: Binary{0, 1, 1}},
		{name: "whitespace separated", input: "1 0\t1", want: Binary{1, 0, 1}},
		{name: "trailing comma", input: "[1, 0,]", want: Binary{1, 0}},
		{name: "empty list", input: "[]", want: Binary{}},
		{name: "blank cell", input: "   ", want: Binary{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRejectsMalformedCells(t *testing.T) {
	inputs := []string{
		"[1, 2, 0]",
		"[1, -1]",
		"[1, x]",
		"[1, 0",
		"1, 0]",
		"[[1, 0]]",
		"[1,,0]",
		"[,]",
		"[1.0, 0]",
		"[1 0, 1]",
		"[+1, 0]",
		"[01, 1]",
		"[-0]",
		"[0x1]",
	}
	for _, input := range inputs {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", input, err)
		}
	}
}

func TestBinaryUnmarshalCSV(t *testing.T) {
	var b Binary
	if err := b.UnmarshalCSV("[0, 1, 1]"); err != nil {
		t.Fatalf("UnmarshalCSV: %v", err)
	}
	if b.String() != "[0, 1, 1]" {
		t.Fatalf("round trip = %q", b.String())
	}
	if err := b.UnmarshalCSV("[3]"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
