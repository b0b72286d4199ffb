package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseOutcome reports which stage of the model-output parser produced a
// result.
type ParseOutcome int

const (
	// ParseNone means neither stage recovered anything.
	ParseNone ParseOutcome = iota
	// ParsePartial means only the permissive key:value stage matched.
	ParsePartial
	// ParseStructured means a valid JSON object was found in the output.
	ParseStructured
)

// ParseModelObject extracts the first JSON object found by brace-matching in
// free-form model output, tolerating markdown code fences around it.
func ParseModelObject(raw string) (map[string]interface{}, bool) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, false
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ParseModelFields runs the two-stage parser over model output: a strict
// JSON stage, then a line-oriented key:value fallback using the given
// name→pattern map. The fallback always yields an entry per key, nil when
// the key never matched.
func ParseModelFields(raw string, patterns map[string]string) (map[string]interface{}, ParseOutcome) {
	if obj, ok := ParseModelObject(raw); ok {
		return obj, ParseStructured
	}

	result := make(map[string]interface{}, len(patterns))
	outcome := ParseNone
	for name, pattern := range patterns {
		re, err := regexp.Compile(fmt.Sprintf(`(?i)%s[:\s-]*([^\n\r]+)`, pattern))
		if err != nil {
			result[name] = nil
			continue
		}
		if m := re.FindStringSubmatch(raw); m != nil {
			result[name] = strings.TrimSpace(m[1])
			outcome = ParsePartial
		} else {
			result[name] = nil
		}
	}
	return result, outcome
}
