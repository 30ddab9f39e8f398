package catalog

import "strings"

// Допустимые значения полей объявления.
var (
	Categories = []string{
		"Tops & T-Shirts",
		"Dresses",
		"Pants & Jeans",
		"Jackets & Coats",
		"Shoes",
		"Accessories",
		"Sweaters & Knitwear",
		"Activewear",
		"Formal Wear",
		"Undergarments",
	}

	Sizes = []string{
		"XS", "S", "M", "L", "XL", "XXL",
		"6", "7", "8", "9", "10", "11", "12",
		"One Size",
	}

	Conditions = []string{"Like New", "Excellent", "Very Good", "Good", "Fair"}
)

// Границы очков за вещь и количества фото.
const (
	MinPoints = 10
	MaxPoints = 200
	MinImages = 1
	MaxImages = 5
)

// Contains — точное совпадение значения со словарём.
func Contains(vocab []string, v string) bool {
	for _, s := range vocab {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeTags: обрезка, нижний регистр, без пустых и повторов, порядок сохраняется.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags разбирает теги, введённые через запятую.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
