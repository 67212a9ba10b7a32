package catalog

// AllCategory is the sentinel facet that matches every product
const AllCategory = "All"

// DeriveCategories returns AllCategory followed by the distinct non-empty
// categories of products in first-seen order. A product filed under the
// literal "All" only ever contributes the sentinel.
func DeriveCategories(products []Product) []string {
	categories := []string{AllCategory}
	seen := map[string]struct{}{AllCategory: {}}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// FilterByCategory returns the products in category, preserving order. An
// empty category or AllCategory returns products unchanged.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == AllCategory {
		return products
	}
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
