package ratelimit

import "strings"

// MatchRule returns the first rule whose method and pattern match the request,
// or nil when the default limit applies.
//
// Patterns use ServeMux-style segments: "{name}" matches any single segment,
// and a pattern ending in "/" matches every path below it.
func MatchRule(path string, method string, rules []Rule) *Rule {
	// Health checks are never limited
	if path == "/health" && method == "GET" {
		return &Rule{Pattern: "/health", Method: "GET"}
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if patternMatches(rule.Pattern, path) {
			return rule
		}
	}
	return nil
}

func patternMatches(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(path, pattern)
	}

	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if isWildcard(want[i]) {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func isWildcard(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}
