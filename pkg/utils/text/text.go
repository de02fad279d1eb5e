// Package text provides parsing helpers for the delimited string formats
// used in channel selectors, alias maps, and config values.
package text

import (
	"strings"
	"unicode/utf8"
)

// Delimiters used across config values and channel selectors.
const (
	// DelimList separates items in a list value, e.g. "f451_slack|f451_twitter".
	DelimList = "|"
	// DelimKeyVal separates a key from its value, e.g. "email:f451_mailgun".
	DelimKeyVal = ":"
)

// SplitList splits a DelimList-delimited string into trimmed, non-empty items.
func SplitList(s string) []string {
	parts := strings.Split(s, DelimList)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// KeyValueMap parses a "key:val|key2:val2" string into a map. Items without
// a value separator are skipped, as are items with a blank key or value.
func KeyValueMap(s string) map[string]string {
	out := make(map[string]string)
	for _, item := range SplitList(s) {
		key, val, found := strings.Cut(item, DelimKeyVal)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}

// ParseBool interprets common truthy spellings. Anything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "y", "yes":
		return true
	}
	return false
}

// Truncate shortens a string to at most max runes, so a multi-byte
// character is never split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// JoinWithAffixes wraps every item with a prefix and suffix and joins them
// with the given spacer, e.g. JoinWithAffixes(tags, "#", "", " ") for hashtags.
func JoinWithAffixes(items []string, prefix, suffix, spacer string) string {
	if len(items) == 0 {
		return ""
	}
	wrapped := make([]string, 0, len(items))
	for _, item := range items {
		wrapped = append(wrapped, prefix+item+suffix)
	}
	return strings.Join(wrapped, spacer)
}
