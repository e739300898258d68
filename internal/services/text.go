package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	mentionRE  = regexp.MustCompile(`(?:^|[^A-Za-z0-9_@])@([A-Za-z0-9]{3,50})\b`)
)

// maxSanitizePasses bounds the unescape loop for text nested in several entity layers.
const maxSanitizePasses = 4

// sanitizeText strips every HTML element from user text and trims surrounding space.
// Entities are decoded for storage, so the text is sanitized again until decoding no
// longer reveals markup. Text still changing after maxSanitizePasses is stored escaped.
func sanitizeText(s string) string {
	out := strings.TrimSpace(s)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(out))
}

// mentions returns the distinct usernames mentioned as @name in text, in order of first
// appearance.
func mentions(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, m := range mentionRE.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
