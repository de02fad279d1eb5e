package idgen

import (
	"strings"
	"testing"
)

func TestSimpleGeneratorUniqueness(t *testing.T) {
	gen := NewSimpleGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewSimpleGenerator()

	id := gen.GenerateWithPrefix("msg")
	if !strings.HasPrefix(id, "msg_") {
		t.Errorf("ID %q missing msg_ prefix", id)
	}
	if parts := strings.Split(id, "_"); len(parts) != 4 {
		t.Errorf("ID %q should have 4 parts, got %d", id, len(parts))
	}

	bare := gen.Generate()
	if parts := strings.Split(bare, "_"); len(parts) != 3 {
		t.Errorf("bare ID %q should have 3 parts, got %d", bare, len(parts))
	}
}

func TestDispatchIDGenerator(t *testing.T) {
	gen := NewDispatchIDGenerator()
	if id := gen.GenerateMessageID(); !strings.HasPrefix(id, "msg_") {
		t.Errorf("message ID %q missing prefix", id)
	}
	if id := gen.GenerateDispatchID(); !strings.HasPrefix(id, "disp_") {
		t.Errorf("dispatch ID %q missing prefix", id)
	}
	if GenerateMessageID() == GenerateMessageID() {
		t.Error("package-level generator returned duplicate IDs")
	}
}
