package types

import "strings"

// Variant identifies a named sub-SKU of a product, e.g. size or color.
type Variant struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Matches reports whether two variant references point at the same sub-SKU.
// Nil on both sides counts as a match; nil on one side does not.
func (v *Variant) Matches(other *Variant) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	return strings.EqualFold(v.Type, other.Type) && strings.EqualFold(v.Value, other.Value)
}

// Label renders the variant for user-facing messages, e.g. "size: XL".
func (v *Variant) Label() string {
	if v == nil {
		return ""
	}
	return v.Type + ": " + v.Value
}
