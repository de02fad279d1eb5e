// Package entity provides the Entity value object: a normalized
// representation of a sender or recipient across all supported contact
// methods (email, phone, chat handle, social handle).
package entity

import (
	"regexp"
	"strings"

	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/utils/validation"
)

// Field names used in map serialization and field-keyed dedupe.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldPhone  = "phone"
	FieldChat   = "chat_handle"
	FieldSocial = "social_handle"
)

// Field limits.
const (
	maxNameLen  = 128
	maxChatLen  = 128
	minPhoneLen = 11
	maxPhoneLen = 15
)

var phoneStrip = regexp.MustCompile(`[^0-9+]`)

// Attrs holds the raw field values for constructing an Entity.
type Attrs struct {
	Name         string
	Email        string
	Phone        string
	ChatHandle   string
	SocialHandle string
}

// Entity is an immutable identity. Every non-empty field was normalized
// and validated at construction.
//
// Equal implements loose "same real-world entity" matching: two entities
// are equal when ANY shared non-empty field matches. Key returns a single
// canonical identity value (first non-empty of email, phone, social
// handle, chat handle, name) for hashing and set-style dedupe; equal
// entities may still have different keys when their populated fields
// differ, so callers needing field-exact dedupe should use DedupeByField.
type Entity struct {
	name   string
	email  string
	phone  string
	chat   string
	social string
}

// New constructs an Entity, normalizing and validating each non-empty
// field. An invalid field fails construction with an invalid-attribute
// error; there is no partial or silent correction.
func New(attrs Attrs) (Entity, error) {
	e := Entity{
		name:   strings.TrimSpace(attrs.Name),
		email:  strings.ToLower(strings.TrimSpace(attrs.Email)),
		phone:  normalizePhone(attrs.Phone),
		chat:   normalizeHandle(attrs.ChatHandle),
		social: normalizeHandle(attrs.SocialHandle),
	}

	if len(e.name) > maxNameLen {
		return Entity{}, errors.NewInvalidAttribute("name exceeds 128 characters").WithAttribute(FieldName)
	}
	if e.email != "" && !validation.IsValidEmail(e.email) {
		return Entity{}, errors.NewInvalidAttribute("'" + e.email + "' is not a valid email").WithAttribute(FieldEmail)
	}
	if e.phone != "" && !validPhone(e.phone) {
		return Entity{}, errors.NewInvalidAttribute("'" + e.phone + "' is not a valid phone number").WithAttribute(FieldPhone)
	}
	if len(e.chat) > maxChatLen {
		return Entity{}, errors.NewInvalidAttribute("chat handle exceeds 128 characters").WithAttribute(FieldChat)
	}
	if e.social != "" && !validation.IsValidHandle(e.social) {
		return Entity{}, errors.NewInvalidAttribute("'" + e.social + "' is not a valid social handle").WithAttribute(FieldSocial)
	}

	return e, nil
}

// FromMap constructs an Entity from its map serialization.
func FromMap(m map[string]string) (Entity, error) {
	return New(Attrs{
		Name:         m[FieldName],
		Email:        m[FieldEmail],
		Phone:        m[FieldPhone],
		ChatHandle:   m[FieldChat],
		SocialHandle: m[FieldSocial],
	})
}

func normalizePhone(s string) string {
	return phoneStrip.ReplaceAllString(strings.TrimSpace(s), "")
}

func normalizeHandle(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "@ ")
}

// validPhone requires the E.164-like format plus 11-15 digits including
// the country code.
func validPhone(s string) bool {
	if !validation.IsValidPhone(s) {
		return false
	}
	digits := len(s) - 1
	return digits >= minPhoneLen && digits <= maxPhoneLen
}

// Name returns the normalized name.
func (e Entity) Name() string { return e.name }

// Email returns the normalized (lower-cased) email address.
func (e Entity) Email() string { return e.email }

// Phone returns the normalized phone number.
func (e Entity) Phone() string { return e.phone }

// ChatHandle returns the normalized chat handle.
func (e Entity) ChatHandle() string { return e.chat }

// SocialHandle returns the normalized social handle.
func (e Entity) SocialHandle() string { return e.social }

// IsEmpty reports whether every field is blank.
func (e Entity) IsEmpty() bool {
	return e.name == "" && e.email == "" && e.phone == "" && e.chat == "" && e.social == ""
}

// Field returns the value of a named field, or "" for an unknown name.
func (e Entity) Field(field string) string {
	switch field {
	case FieldName:
		return e.name
	case FieldEmail:
		return e.email
	case FieldPhone:
		return e.phone
	case FieldChat:
		return e.chat
	case FieldSocial:
		return e.social
	}
	return ""
}

// Equal reports loose identity equality: true when any field that is
// non-empty on both sides matches case-insensitively.
func (e Entity) Equal(other Entity) bool {
	fields := []string{FieldEmail, FieldPhone, FieldSocial, FieldChat, FieldName}
	for _, f := range fields {
		a, b := e.Field(f), other.Field(f)
		if a != "" && b != "" && strings.EqualFold(a, b) {
			return true
		}
	}
	return false
}

// Key returns the canonical identity key: the first non-empty of email,
// phone, social handle, chat handle, name, lower-cased.
func (e Entity) Key() string {
	for _, v := range []string{e.email, e.phone, e.social, e.chat, e.name} {
		if v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// ToMap serializes the five normalized fields.
func (e Entity) ToMap() map[string]string {
	return map[string]string{
		FieldName:   e.name,
		FieldEmail:  e.email,
		FieldPhone:  e.phone,
		FieldChat:   e.chat,
		FieldSocial: e.social,
	}
}

// DedupeByField deduplicates a list of entities keyed on the given field,
// preserving the first occurrence. Entities with a blank key field are
// dropped.
func DedupeByField(in []Entity, field string) []Entity {
	seen := make(map[string]bool, len(in))
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		key := strings.ToLower(e.Field(field))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
