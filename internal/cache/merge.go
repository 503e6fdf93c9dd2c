package cache

import (
	"sort"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

// UpsertMerge is the flat delta merge: tombstoned records are removed,
// everything else is upserted by id. Records absent from the delta are
// left untouched. Applying the same delta twice is a no-op the second
// time.
func UpsertMerge[T models.Entity](current map[string]T, delta []T) {
	for _, item := range delta {
		if item.IsDeleted() {
			delete(current, item.EntityID())
			continue
		}
		current[item.EntityID()] = item
	}
}

// MergeCategoryGroups merges a category delta, which arrives as groups
// each carrying only its changed categories. A tombstoned group removes
// the group and every category previously nested under it, whether or not
// those categories appear in the delta themselves.
func MergeCategoryGroups(current map[string]models.CategoryGroup, delta []models.CategoryGroup) {
	for _, g := range delta {
		if g.IsDeleted() {
			delete(current, g.ID)
			continue
		}

		existing, ok := current[g.ID]
		byID := make(map[string]models.Category)
		if ok {
			for _, c := range existing.Categories {
				byID[c.ID] = c
			}
		}
		for _, c := range g.Categories {
			if c.IsDeleted() {
				delete(byID, c.ID)
				continue
			}
			byID[c.ID] = c
		}

		merged := g
		merged.Categories = make([]models.Category, 0, len(byID))
		for _, c := range byID {
			merged.Categories = append(merged.Categories, c)
		}
		sort.Slice(merged.Categories, func(i, j int) bool {
			return merged.Categories[i].Name < merged.Categories[j].Name
		})
		current[g.ID] = merged
	}
}
