package domain

import "strings"

// Category selects which quote source serves a request.
type Category string

// Supported categories. The set is closed.
const (
	// CategoryZen is served by the ZenQuotes REST API.
	CategoryZen Category = "zen"

	// CategoryBible is served by the bible-api.com random verse endpoint.
	CategoryBible Category = "bible"

	// CategoryLDS is scraped from the Goodreads "lds" tag listing.
	CategoryLDS Category = "lds"

	// CategoryGeek is served from a fixed in-memory list.
	CategoryGeek Category = "geek"

	// CategorySoftware is scraped from the Goodreads "programming" tag listing.
	CategorySoftware Category = "software"

	// CategoryPhilosophy is scraped from a single HighExistence article.
	CategoryPhilosophy Category = "philosophy"
)

var categories = []Category{
	CategoryZen,
	CategoryBible,
	CategoryLDS,
	CategoryGeek,
	CategorySoftware,
	CategoryPhilosophy,
}

// Categories returns every supported category in a stable order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)

	return out
}

// ParseCategory validates s against the closed set.
// Returns an InvalidCategoryError for anything else.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if c.Valid() {
		return c, nil
	}

	return "", NewInvalidCategoryError(s)
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}

	return false
}

// String returns the wire name of the category.
func (c Category) String() string {
	return string(c)
}
