// Package identity normalizes the heterogeneous identifiers that reach the
// system: agreement numbers stored interchangeably as numbers or strings, and
// job lookups that may carry a store-generated opaque id or a caller-supplied
// batch string. Every key comparison in the application goes through here.
package identity

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key is the canonical lookup form of an agreement number. Both
// representations are kept because stored documents carry either one.
type Key struct {
	String string
	Int    int64
	HasInt bool
}

// Normalize trims the string form of raw and attempts an integer parse.
// Any value shape is accepted; nil normalizes to the empty key.
func Normalize(raw any) Key {
	s := strings.TrimSpace(Stringify(raw))
	key := Key{String: s}
	if n, ok := parseLeadingInt(s); ok {
		key.Int = n
		key.HasInt = true
	}
	return key
}

// Matches reports whether other identifies the same agreement as the key:
// trimmed string equality or equal integer parse. Blank values never match.
func (k Key) Matches(other any) bool {
	o := Normalize(other)
	if k.String == "" || o.String == "" {
		return false
	}
	if k.String == o.String {
		return true
	}
	return k.HasInt && o.HasInt && k.Int == o.Int
}

// IsZero reports whether the key carries no identifier at all.
func (k Key) IsZero() bool {
	return k.String == ""
}

// IsOpaqueID reports whether id is a syntactically valid store-generated
// identifier (24-char hex ObjectID). It decides whether a job lookup should
// target the primary id or the caller-supplied batch string.
func IsOpaqueID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// Stringify renders a stored identifier value as the string an operator
// would have typed: numbers without exponent notation, ObjectIDs as hex.
func Stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		// JSON numbers decode as float64; agreement numbers must not render
		// in exponent notation.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseLeadingInt parses the leading base-10 integer of s, accepting and
// ignoring trailing garbage so that values like "5123456789 " and
// "5123456789/A" resolve to the same key.
func parseLeadingInt(s string) (int64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == end {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:digits], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
