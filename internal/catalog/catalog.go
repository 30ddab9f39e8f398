// Package catalog фильтрует и сортирует витрину объявлений.
// Используется сервером при выдаче каталога и клиентом для офлайн-поиска.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"ReWear/internal/model"
)

// SortKey — порядок выдачи.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortPointsLow  SortKey = "points-low"
	SortPointsHigh SortKey = "points-high"
)

// Значения фильтров, означающие «без фильтра».
const (
	AllCategories = "All Categories"
	AllSizes      = "All Sizes"
	AllConditions = "All Conditions"
)

// ParseSortKey разбирает ключ сортировки; пустая строка — newest.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPointsLow, SortPointsHigh:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Query — параметры поиска по витрине.
type Query struct {
	Search    string
	Category  string
	Size      string
	Condition string
	Sort      SortKey
}

// Apply возвращает доступные к получению вещи, подходящие под запрос, в порядке q.Sort.
// Входной срез не изменяется.
func Apply(items []model.Item, q Query) []model.Item {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !it.Acquirable() {
			continue
		}
		if !matchesText(it, term) {
			continue
		}
		if !matchesFilter(it.Category, q.Category, AllCategories) ||
			!matchesFilter(it.Size, q.Size, AllSizes) ||
			!matchesFilter(it.Condition, q.Condition, AllConditions) {
			continue
		}
		out = append(out, it)
	}

	sort.SliceStable(out, less(out, q.Sort))
	return out
}

func matchesText(it model.Item, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), term) ||
		strings.Contains(strings.ToLower(it.Description), term) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesFilter(value, filter, all string) bool {
	if filter == "" || filter == all {
		return true
	}
	return value == filter
}

func less(items []model.Item, key SortKey) func(i, j int) bool {
	switch key {
	case SortOldest:
		return func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) }
	case SortPointsLow:
		return func(i, j int) bool { return items[i].Points < items[j].Points }
	case SortPointsHigh:
		return func(i, j int) bool { return items[i].Points > items[j].Points }
	default:
		return func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) }
	}
}
