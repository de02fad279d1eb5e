package attrib

import (
	"reflect"
	"testing"

	"github.com/mlanser/f451-comms/pkg/entity"
	"github.com/mlanser/f451-comms/pkg/errors"
)

func mustEntity(t *testing.T, attrs entity.Attrs) entity.Entity {
	t.Helper()
	e, err := entity.New(attrs)
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}

func TestRecipientListFromStrings(t *testing.T) {
	tests := []struct {
		name  string
		kind  RecipientKind
		input interface{}
		want  []string
	}{
		{
			"delimited email string",
			KindEmail,
			"a@x.com|b@x.com",
			[]string{"a@x.com", "b@x.com"},
		},
		{
			"case-folded email dedupe",
			KindEmail,
			[]string{"a@x.com", "A@X.COM", "b@x.com"},
			[]string{"a@x.com", "b@x.com"},
		},
		{
			"invalid emails dropped",
			KindEmail,
			[]string{"good@x.com", "not-an-email", ""},
			[]string{"good@x.com"},
		},
		{
			"phone kind",
			KindPhone,
			"+12025550123|+447911123456|bogus",
			[]string{"+12025550123", "+447911123456"},
		},
		{
			"handles stripped of sigils",
			KindSocial,
			[]string{"@jane_doe", "bob"},
			[]string{"jane_doe", "bob"},
		},
		{
			"single scalar string",
			KindEmail,
			"solo@x.com",
			[]string{"solo@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, err := NewRecipientList("to", tt.kind, tt.input, ListConfig{MaxNum: 100})
			if err != nil {
				t.Fatalf("NewRecipientList: %v", err)
			}
			if got := rl.Clean(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecipientListFromEntities(t *testing.T) {
	jane := mustEntity(t, entity.Attrs{Name: "Jane", Email: "jane@x.com"})
	dupe := mustEntity(t, entity.Attrs{Name: "J. Doe", Email: "JANE@x.com"})
	noEmail := mustEntity(t, entity.Attrs{Name: "Phantom", Phone: "+12025550123"})
	bob := mustEntity(t, entity.Attrs{Email: "bob@x.com"})

	rl, err := NewRecipientList("to", KindEmail, []entity.Entity{jane, dupe, noEmail, bob}, ListConfig{MaxNum: 100})
	if err != nil {
		t.Fatalf("NewRecipientList: %v", err)
	}

	want := []string{"jane@x.com", "bob@x.com"}
	if got := rl.Clean(); !reflect.DeepEqual(got, want) {
		t.Errorf("Clean = %v, want %v", got, want)
	}
	if rl.Raw()[0].Name() != "Jane" {
		t.Errorf("first occurrence not preserved: %q", rl.Raw()[0].Name())
	}
}

func TestRecipientListSingleEntity(t *testing.T) {
	jane := mustEntity(t, entity.Attrs{Email: "jane@x.com"})
	rl, err := NewRecipientList("to", KindEmail, jane, ListConfig{MaxNum: 10})
	if err != nil {
		t.Fatalf("NewRecipientList: %v", err)
	}
	if rl.Len() != 1 {
		t.Errorf("Len = %d, want 1", rl.Len())
	}
}

func TestRecipientListUnsupportedInput(t *testing.T) {
	for _, input := range []interface{}{42, []int{1, 2}, map[string]string{"a": "b"}, nil} {
		rl, err := NewRecipientList("cc", KindEmail, input, ListConfig{MaxNum: 10})
		if err != nil {
			t.Fatalf("NewRecipientList(%v): %v", input, err)
		}
		if rl.Len() != 0 {
			t.Errorf("input %v should yield empty list, got %d", input, rl.Len())
		}
	}
}

func TestRecipientListMaxNumClamp(t *testing.T) {
	rl, err := NewRecipientList("to", KindEmail, "a@x.com|b@x.com|c@x.com",
		ListConfig{Required: true, Strict: true, MinNum: 1, MaxNum: 0})
	if err != nil {
		t.Fatalf("NewRecipientList: %v", err)
	}
	// MaxNum 0 clamps up to MinNum 1, not down to 0.
	if rl.Len() != 1 {
		t.Errorf("Len = %d, want 1", rl.Len())
	}
}

func TestRecipientListRequired(t *testing.T) {
	_, err := NewRecipientList("to", KindEmail, "", ListConfig{Required: true, Strict: true, MinNum: 1, MaxNum: 10})
	if err == nil {
		t.Fatal("strict empty required list should fail")
	}
	if errors.GetErrorCode(err) != errors.ErrMissingAttribute {
		t.Errorf("code = %v, want %v", errors.GetErrorCode(err), errors.ErrMissingAttribute)
	}

	rl, err := NewRecipientList("to", KindEmail, "", ListConfig{Required: true, Strict: false, MinNum: 1, MaxNum: 10})
	if err != nil {
		t.Fatalf("non-strict should not fail: %v", err)
	}
	if rl.Valid() {
		t.Error("empty required non-strict list should be invalid")
	}
	if rl.Len() != 0 {
		t.Errorf("Len = %d, want 0", rl.Len())
	}

	optional, err := NewRecipientList("cc", KindEmail, "", ListConfig{MaxNum: 10})
	if err != nil || !optional.Valid() {
		t.Errorf("empty optional list should be valid, err=%v", err)
	}
}
