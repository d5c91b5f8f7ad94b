package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse decodes a list literal such as "[1, 0, 1]" into a Binary.
//
// Brackets are optional, separators may be commas and/or whitespace, and a
// blank cell or "[]" yields an empty sequence. Tokens that are not exactly 0 or
// 1, nested or unbalanced brackets, and empty elements ("1,,0") are rejected.
func Parse(s string) (Binary, error) {
	body := strings.TrimSpace(s)
	open := strings.HasPrefix(body, "[")
	closed := strings.HasSuffix(body, "]")
	if open != closed {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidInput, truncate(s))
	}
	if open {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if strings.ContainsAny(body, "[]") {
		return nil, fmt.Errorf("%w: nested list in %q", ErrInvalidInput, truncate(s))
	}
	if body == "" {
		return Binary{}, nil
	}

	fields := splitElements(body)
	out := make(Binary, 0, len(fields))
	for i, field := range fields {
		if field == "" {
			return nil, fmt.Errorf("%w: empty element at position %d", ErrInvalidInput, i)
		}
		switch field {
		case "0":
			out = append(out, 0)
		case "1":
			out = append(out, 1)
		default:
			if value, err := strconv.Atoi(field); err == nil && value != 0 && value != 1 {
				return nil, elementError(i, value)
			}
			return nil, fmt.Errorf("%w: element %d %q is not 0 or 1", ErrInvalidInput, i, field)
		}
	}
	return out, nil
}

// splitElements splits on commas when present, otherwise on whitespace. A
// trailing comma is tolerated the same way list literals allow it.
func splitElements(body string) []string {
	if !strings.Contains(body, ",") {
		return strings.FieldsFunc(body, unicode.IsSpace)
	}
	parts := strings.Split(body, ",")
	if strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func truncate(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
