package resolver

// Value is a resolved scalar setting. A setting whose whole value is "false"
// (in any case) resolves to the false sentinel rather than the string.
type Value struct {
	text  string
	falsy bool
}

// False is the false sentinel.
var False = Value{falsy: true}

// Str returns a Value holding s.
func Str(s string) Value {
	return Value{text: s}
}

// IsFalse reports whether v is the false sentinel.
func (v Value) IsFalse() bool {
	return v.falsy
}

// Bool reports whether v is truthy: not the false sentinel and not empty.
func (v Value) Bool() bool {
	return !v.falsy && v.text != ""
}

// String returns the text of v. The false sentinel has no text.
func (v Value) String() string {
	return v.text
}

func (v Value) append(s string) Value {
	// additive contributions onto the sentinel start from empty text
	return Value{text: v.text + s}
}
