package strtable

import "locale-uploader/internal/literal"

// Value is the resolved value of a key: either an explicit string or the
// KeyOnly sentinel meaning "the key is known but has no value of its own".
type Value struct {
	text     string
	explicit bool
}

// KeyOnly is the sentinel for keys referenced without a known value.
var KeyOnly = Value{}

// Explicit wraps a discovered string value.
func Explicit(s string) Value {
	return Value{text: s, explicit: true}
}

// Text returns the explicit string and true, or "" and false for KeyOnly.
func (v Value) Text() (string, bool) { return v.text, v.explicit }

// Literal renders v for the AceLocale line format. KeyOnly is the bare word
// true, which the destination reads as "the value equals the key".
func (v Value) Literal() string {
	if !v.explicit {
		return "true"
	}
	return literal.Encode(v.text)
}

func (v Value) String() string {
	if !v.explicit {
		return "<key-only>"
	}
	return v.text
}
