package models

// ScaleType identifies the set of vote values permitted in a room
type ScaleType string

const (
	ScaleFibonacci ScaleType = "fibonacci"
	ScaleTShirt    ScaleType = "tshirt"
	ScalePowers    ScaleType = "powers"
)

// Reserved vote values
const (
	// VoteUnsure is part of every scale and is excluded from consensus
	VoteUnsure = "?"
	// VoteBreak signals a pause request; only valid when the room has
	// coffee breaks enabled, excluded from consensus and average
	VoteBreak = "break"
)

var scaleValues = map[ScaleType][]string{
	ScaleFibonacci: {"0", "1", "2", "3", "5", "8", "13", "20", "40", "100", VoteUnsure},
	ScaleTShirt:    {"XS", "S", "M", "L", "XL", "XXL", VoteUnsure},
	ScalePowers:    {"1", "2", "4", "8", "16", "32", VoteUnsure},
}

// NormalizeScale maps a requested scale name onto a known scale,
// falling back to fibonacci for anything unrecognized
func NormalizeScale(name string) ScaleType {
	s := ScaleType(name)
	if _, ok := scaleValues[s]; ok {
		return s
	}
	return ScaleFibonacci
}

// Values returns the permitted vote values of the scale
func (s ScaleType) Values() []string {
	return scaleValues[s]
}

// Contains reports whether value belongs to the scale
func (s ScaleType) Contains(value string) bool {
	for _, v := range scaleValues[s] {
		if v == value {
			return true
		}
	}
	return false
}
