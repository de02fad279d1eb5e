package attrib

import (
	"strings"

	"github.com/mlanser/f451-comms/pkg/entity"
	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/utils/text"
	"github.com/mlanser/f451-comms/pkg/utils/validation"
)

// RecipientKind selects which contact field a recipient list validates
// against and exposes through Clean.
type RecipientKind string

const (
	// KindEmail validates and exposes email addresses.
	KindEmail RecipientKind = "email"
	// KindPhone validates and exposes phone numbers.
	KindPhone RecipientKind = "phone"
	// KindChat validates and exposes chat handles.
	KindChat RecipientKind = "chat"
	// KindSocial validates and exposes social handles.
	KindSocial RecipientKind = "social"
)

// entityField maps a kind to its entity field name.
func (k RecipientKind) entityField() string {
	switch k {
	case KindEmail:
		return entity.FieldEmail
	case KindPhone:
		return entity.FieldPhone
	case KindChat:
		return entity.FieldChat
	case KindSocial:
		return entity.FieldSocial
	}
	return ""
}

// ListConfig bounds a recipient list.
type ListConfig struct {
	Required bool
	Strict   bool
	MinNum   int
	MaxNum   int
}

// RecipientList is a bounded, deduplicated list of entities keyed on one
// contact field.
type RecipientList struct {
	base
	kind  RecipientKind
	items []entity.Entity
}

// NewRecipientList normalizes a caller-supplied recipient value into a
// RecipientList. Accepted input forms:
//
//   - a single address/handle string, or a "|"-delimited string of them
//   - a []string of addresses/handles
//   - an entity.Entity or []entity.Entity
//
// All-string input is deduplicated, format-validated per kind, and turned
// into entities; invalid items are dropped silently. All-entity input is
// deduplicated on the kind's field, dropping entities missing that field.
// Mixed or unsupported input yields an empty list. The result is capped at
// MaxNum (clamped >= MinNum).
//
// With Required and Strict set, an empty result is a missing-attribute
// error. With Required set but Strict unset, an empty result yields a list
// with Valid() == false.
func NewRecipientList(keyword string, kind RecipientKind, input interface{}, cfg ListConfig) (*RecipientList, error) {
	rl := &RecipientList{
		base: base{
			keyword:  keyword,
			required: cfg.Required,
			valid:    true,
			minNum:   cfg.MinNum,
			maxNum:   clampMax(cfg.MinNum, cfg.MaxNum),
		},
		kind: kind,
	}

	rl.items = rl.process(input)

	if cfg.Required && len(rl.items) == 0 {
		if cfg.Strict {
			return nil, errors.NewMissingAttribute("'" + keyword + "' attribute cannot be blank.").
				WithAttribute(keyword)
		}
		rl.valid = false
	}

	return rl, nil
}

func (rl *RecipientList) process(input interface{}) []entity.Entity {
	switch v := input.(type) {
	case nil:
		return nil
	case string:
		return rl.fromStrings(text.SplitList(v))
	case []string:
		return rl.fromStrings(v)
	case entity.Entity:
		return rl.fromEntities([]entity.Entity{v})
	case []entity.Entity:
		return rl.fromEntities(v)
	}
	return nil
}

func (rl *RecipientList) fromStrings(in []string) []entity.Entity {
	seen := make(map[string]bool, len(in))
	out := make([]entity.Entity, 0, len(in))
	for _, raw := range in {
		raw = strings.TrimSpace(raw)
		normalized, ok := rl.normalize(raw)
		if !ok {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true

		e, err := entity.FromMap(map[string]string{rl.kind.entityField(): normalized})
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return capItems(out, rl.maxNum)
}

func (rl *RecipientList) normalize(raw string) (string, bool) {
	switch rl.kind {
	case KindEmail:
		raw = strings.ToLower(raw)
		return raw, validation.IsValidEmail(raw)
	case KindPhone:
		return raw, validation.IsValidPhone(raw)
	case KindChat, KindSocial:
		raw = strings.TrimLeft(raw, "@ ")
		return raw, validation.IsValidHandle(raw)
	}
	return "", false
}

func (rl *RecipientList) fromEntities(in []entity.Entity) []entity.Entity {
	return capItems(entity.DedupeByField(in, rl.kind.entityField()), rl.maxNum)
}

// Len returns the number of recipients.
func (rl *RecipientList) Len() int { return len(rl.items) }

// Raw returns the recipients as entities.
func (rl *RecipientList) Raw() []entity.Entity { return rl.items }

// Clean returns the channel-ready field values (email addresses, phone
// numbers, or handles).
func (rl *RecipientList) Clean() []string {
	field := rl.kind.entityField()
	out := make([]string, 0, len(rl.items))
	for _, e := range rl.items {
		out = append(out, e.Field(field))
	}
	return out
}
