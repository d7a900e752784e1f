package climetlab

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownKey        = "unknown_key"
	CodeInvalidValue      = "invalid_value"
	CodeInvalidType       = "invalid_type"
	CodeNoSuchCombination = "no_such_combination"
	CodeShapeMismatch     = "shape_mismatch"
	CodeConflict          = "conflict"
	CodeParseError        = "parse_error"
)

// Issue represents a single validation entry raised while checking keyword
// arguments against an availability or while normalizing them.
type Issue struct {
	Key     string // Keyword argument name; empty when the issue spans several keys.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints (for example, the available values).
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"value": 1000, "request": {...}})
	// for i18n and observability.
	Params map[string]any
	// Rule optionally records the rule that produced this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_value at levelist: 1000
		if it.Key == "" {
			fmt.Fprintf(b, "%s", it.Code)
		} else {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Key)
		}
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
