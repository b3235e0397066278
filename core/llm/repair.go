package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Transformations applied by RepairJSON, in order:
//  1. strip Markdown code fences
//  2. cut to the outermost {...} brace boundary
//  3. remove trailing commas before } or ]
// This is the single lenient-parse utility; callers must not add their
// own ad hoc repairs.

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// RepairJSON applies the documented transformations to raw model output.
func RepairJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}

	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// ParseLenient repairs raw model output and unmarshals it into v.
func ParseLenient(raw string, v any) error {
	repaired := RepairJSON(raw)
	if repaired == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w", err)
	}
	return nil
}
