package attrib

import (
	"reflect"
	"strings"
	"testing"
)

func TestTagListNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		cfg   TagConfig
		want  []string
	}{
		{"delimited string", "alpha|beta", TagConfig{}, []string{"alpha", "beta"}},
		{"ascii folding", []string{"caf\xc3\xa9"}, TagConfig{}, []string{"caf??"}},
		{"short tags dropped", []string{"ok_tag", "ab"}, TagConfig{}, []string{"ok_tag"}},
		{"capped at max num", []string{"tag1", "tag2", "tag3", "tag4"}, TagConfig{}, []string{"tag1", "tag2", "tag3"}},
		{"nil input", nil, TagConfig{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTagList("tags", tt.input, tt.cfg)
			if got := tl.Clean(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clean = %v, want %v", got, tt.want)
			}
			if !tl.Valid() {
				t.Error("tag lists are never invalid")
			}
		})
	}
}

func TestTagListLengthClamp(t *testing.T) {
	long := strings.Repeat("x", 200)
	tl := NewTagList("tags", []string{long}, TagConfig{})
	if got := tl.Clean()[0]; len(got) != 128 {
		t.Errorf("tag length = %d, want 128", len(got))
	}

	// MaxLen above the hard cap is reduced to it.
	tl = NewTagList("tags", []string{long}, TagConfig{MaxLen: 500})
	if got := tl.Clean()[0]; len(got) != 128 {
		t.Errorf("tag length = %d, want 128", len(got))
	}

	// Raising MaxNum allows more tags.
	tl = NewTagList("tags", []string{"tag1", "tag2", "tag3", "tag4"}, TagConfig{MaxNum: 4})
	if tl.Len() != 4 {
		t.Errorf("Len = %d, want 4", tl.Len())
	}
}
