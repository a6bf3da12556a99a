package pipeline

import "strings"

// NormalizeText trims every line, drops empty lines and rejoins with "\n".
// The second result reports whether any line survived.
func NormalizeText(raw string) (string, bool) {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	text := strings.Join(kept, "\n")
	return text, text != ""
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ExtractKeyValuePairs picks up "key: value" lines. Lines with more than one
// colon are ignored since they are usually times or URLs. A repeated key
// keeps its last value.
func ExtractKeyValuePairs(text string) map[string]string {
	var pairs map[string]string
	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, ":") != 1 {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if pairs == nil {
			pairs = make(map[string]string)
		}
		pairs[key] = value
	}
	return pairs
}
