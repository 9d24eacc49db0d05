// Package normalize turns free-form model output into a JSON value.
//
// Models wrap JSON in markdown fences, add commentary before or after it,
// leave trailing commas, and occasionally emit shell-style comments. Normalize
// strips the noise, isolates the first object, and runs a tolerant repair pass
// before decoding.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/mlorentedev/roastmydouban/internal/metrics"
)

// ErrUnparsable is matched by every *UnparsableError.
var ErrUnparsable = errors.New("unparsable model response")

// UnparsableError keeps the original text for logging. It must not be shown to users.
type UnparsableError struct {
	Text string
	Err  error
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("normalize: %v: %v", ErrUnparsable, e.Err)
}

func (e *UnparsableError) Is(target error) bool { return target == ErrUnparsable }

func (e *UnparsableError) Unwrap() error { return e.Err }

// Normalize extracts and decodes the JSON value in raw. The result is
// map[string]any for objects; arrays and scalars are returned as decoded.
func Normalize(raw string) (any, error) {
	cleaned := StripFences(raw)

	if v, err := decode(cleaned); err == nil {
		metrics.NormalizeOutcomes.WithLabelValues("direct").Inc()
		return v, nil
	}

	candidate := Extract(cleaned)

	// The repair pass keeps "# ..." as a string element instead of failing,
	// so shell-style comments are rewritten before it ever sees them.
	if patched := PatchHashComments(candidate); patched != candidate {
		v, err := repairDecode(patched)
		if err == nil {
			metrics.NormalizeOutcomes.WithLabelValues("patched").Inc()
			return v, nil
		}
		slog.Warn("normalize: patched repair failed, retrying unpatched", "error", err)
	}

	v, err := repairDecode(candidate)
	if err == nil {
		metrics.NormalizeOutcomes.WithLabelValues("repaired").Inc()
		return v, nil
	}

	metrics.NormalizeOutcomes.WithLabelValues("unparsable").Inc()
	return nil, &UnparsableError{Text: raw, Err: err}
}

// StripFences removes markdown code-fence markers and surrounding whitespace.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Extract returns the first brace-balanced object in s. If the braces never
// balance it falls back to the span from the first '{' to the last '}', and
// failing that to s itself.
func Extract(s string) string {
	first := strings.IndexByte(s, '{')
	if first == -1 {
		return s
	}

	depth := 0
	for i := first; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return s[first : i+1]
		}
	}

	// Truncated output. This can keep trailing commentary; the repair pass copes.
	if last := strings.LastIndexByte(s, '}'); last > first {
		return s[first : last+1]
	}
	return s
}

// PatchHashComments rewrites ", #" separators outside string literals into
// line comments the repair pass knows how to drop.
func PatchHashComments(s string) string {
	if !strings.Contains(s, ", #") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == ',' && strings.HasPrefix(s[i:], ", #"):
			b.WriteString(", //")
			i += len(", #") - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func repairDecode(s string) (any, error) {
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, fmt.Errorf("repair: %w", err)
	}
	return decode(repaired)
}

func decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
