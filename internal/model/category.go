package model

// Category labels an expense. Valid values come from the configured
// category set; see package categories.
type Category string

// String returns the category label.
func (c Category) String() string {
	return string(c)
}
