package query

import (
	"fmt"
	"strings"
)

// Key identifies one cached operation: an operation name plus its ordered
// parameters, rendered as "op:param1:param2". Invalidation matches a key
// exactly or as a prefix, so invalidating "engagement" reaches every
// parameterized engagement entry.
type Key string

// NewKey renders an operation name and its parameters into a Key.
func NewKey(op string, params ...any) Key {
	if len(params) == 0 {
		return Key(op)
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return Key(strings.Join(parts, ":"))
}

// matches reports whether k is covered by target, exactly or as a prefix
// segment.
func (k Key) matches(target Key) bool {
	if k == target {
		return true
	}
	return strings.HasPrefix(string(k), string(target)+":")
}
