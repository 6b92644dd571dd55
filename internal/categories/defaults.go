package categories

// Default returns the built-in category labels in display order.
func Default() []string {
	return []string{
		"Housing & Utilities",
		"Food",
		"Entertainment",
		"Transportation",
		"Other",
	}
}
