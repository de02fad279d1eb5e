package attrib

import (
	"encoding/json"
	"sort"
)

// RecipientDataMap is a keyed map of per-recipient substitution data,
// truncated to a maximum number of entries.
type RecipientDataMap struct {
	base
	data map[string]interface{}
}

// NewRecipientDataMap truncates the input map to MaxNum entries. When
// truncation is needed, the kept keys are chosen in sorted order so the
// result is deterministic.
func NewRecipientDataMap(keyword string, input map[string]interface{}, maxNum int) *RecipientDataMap {
	rd := &RecipientDataMap{
		base: base{
			keyword: keyword,
			valid:   true,
			maxNum:  maxNum,
		},
	}

	if len(input) == 0 {
		rd.data = map[string]interface{}{}
		return rd
	}

	if maxNum <= 0 || len(input) <= maxNum {
		rd.data = input
		return rd
	}

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rd.data = make(map[string]interface{}, maxNum)
	for _, k := range keys[:maxNum] {
		rd.data[k] = input[k]
	}
	return rd
}

// Len returns the number of entries.
func (rd *RecipientDataMap) Len() int { return len(rd.data) }

// Raw returns the structured map.
func (rd *RecipientDataMap) Raw() map[string]interface{} { return rd.data }

// Clean serializes the map to its JSON wire form.
func (rd *RecipientDataMap) Clean() string {
	if len(rd.data) == 0 {
		return "{}"
	}
	b, err := json.Marshal(rd.data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
