package attrib

import (
	"strings"

	"github.com/mlanser/f451-comms/pkg/utils/text"
)

// Tag list defaults, matching common email-vendor limits.
const (
	defaultMaxTagNum = 3
	defaultMinTagLen = 3
	defaultMaxTagLen = 128
)

// TagConfig bounds a tag list. Zero values fall back to the defaults;
// MinLen is raised to at least the default and MaxLen capped at it.
type TagConfig struct {
	MaxNum int
	MinLen int
	MaxLen int
}

// TagList is a bounded list of ASCII-folded message tags.
type TagList struct {
	base
	minLen int
	maxLen int
	items  []string
}

// NewTagList normalizes a tag value (a single tag, a "|"-delimited string,
// or a []string) into a TagList. Each tag is ASCII-folded byte-wise
// (non-ASCII bytes become '?') and truncated to MaxLen; tags shorter than
// MinLen are dropped silently; the list is capped at MaxNum. Tags are
// never required, so construction cannot fail.
func NewTagList(keyword string, input interface{}, cfg TagConfig) *TagList {
	maxNum := cfg.MaxNum
	if maxNum < defaultMaxTagNum {
		maxNum = defaultMaxTagNum
	}
	minLen := cfg.MinLen
	if minLen < defaultMinTagLen {
		minLen = defaultMinTagLen
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 || maxLen > defaultMaxTagLen {
		maxLen = defaultMaxTagLen
	}

	tl := &TagList{
		base: base{
			keyword: keyword,
			valid:   true,
			maxNum:  maxNum,
		},
		minLen: minLen,
		maxLen: maxLen,
	}

	var raw []string
	switch v := input.(type) {
	case string:
		raw = text.SplitList(v)
	case []string:
		raw = v
	}

	for _, tag := range raw {
		tag = asciiFold(strings.TrimSpace(tag))
		if len(tag) > tl.maxLen {
			tag = tag[:tl.maxLen]
		}
		if len(tag) < tl.minLen {
			continue
		}
		tl.items = append(tl.items, tag)
	}
	tl.items = capItems(tl.items, tl.maxNum)

	return tl
}

// asciiFold replaces every non-ASCII byte with '?'.
func asciiFold(s string) string {
	b := []byte(s)
	folded := false
	for i, c := range b {
		if c > 127 {
			b[i] = '?'
			folded = true
		}
	}
	if !folded {
		return s
	}
	return string(b)
}

// Len returns the number of tags.
func (tl *TagList) Len() int { return len(tl.items) }

// Raw returns the normalized tags.
func (tl *TagList) Raw() []string { return tl.items }

// Clean returns the normalized tags; tags have no separate wire form.
func (tl *TagList) Clean() []string { return tl.items }
