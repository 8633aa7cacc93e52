package hierarchy

import "errors"

// Category is an organizational category in the church network hierarchy
type Category string

// Canonical categories, ordered from highest to lowest authority
const (
	CategorySede        Category = "Sede"
	CategoryMinisterio  Category = "Ministério"
	CategoryCentro      Category = "Centro"
	CategoryCongregacao Category = "Congregação"
	CategoryPontoOracao Category = "Ponto de Oração"
)

// ErrUnknownCategory is returned when a label is not part of the canonical hierarchy
var ErrUnknownCategory = errors.New("unknown hierarchy category")

// ranks is the canonical ordered sequence; index = rank, 0 = highest authority.
// Process-wide constant configuration, never user data.
var ranks = []Category{
	CategorySede,
	CategoryMinisterio,
	CategoryCentro,
	CategoryCongregacao,
	CategoryPontoOracao,
}

// Categories returns the canonical ordered category list
func Categories() []Category {
	out := make([]Category, len(ranks))
	copy(out, ranks)
	return out
}

// Top returns the highest-authority category
func Top() Category {
	return ranks[0]
}

// IsValid reports whether the category belongs to the canonical hierarchy
func IsValid(c Category) bool {
	_, err := RankOf(c)
	return err == nil
}

// RankOf returns the rank of a category in the canonical sequence
func RankOf(c Category) (int, error) {
	for i, r := range ranks {
		if r == c {
			return i, nil
		}
	}
	return 0, ErrUnknownCategory
}

// AllowedChildCategories returns every category ranked strictly below the
// parent's category. An unknown parent category yields the full sequence:
// legacy churches with missing or garbled category data must still be able
// to receive links beneath them.
func AllowedChildCategories(parent Category) []Category {
	rank, err := RankOf(parent)
	if err != nil {
		return Categories()
	}

	out := make([]Category, 0, len(ranks)-rank-1)
	for i := rank + 1; i < len(ranks); i++ {
		out = append(out, ranks[i])
	}
	return out
}
