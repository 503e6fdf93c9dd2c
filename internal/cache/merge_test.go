package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctor-kat/ynab-assist/internal/models"
)

func group(id, name string, categories ...models.Category) models.CategoryGroup {
	return models.CategoryGroup{ID: id, Name: name, Categories: categories}
}

func category(id, groupID, name string) models.Category {
	return models.Category{ID: id, CategoryGroupID: groupID, Name: name}
}

func TestMergeCategoryGroupsUpsertsNestedCategories(t *testing.T) {
	current := map[string]models.CategoryGroup{
		"g1": group("g1", "Bills",
			category("c1", "g1", "Rent"),
			category("c2", "g1", "Power")),
	}

	// Delta carries only the changed category; the untouched one survives.
	delta := []models.CategoryGroup{
		group("g1", "Bills", category("c2", "g1", "Electricity")),
	}
	MergeCategoryGroups(current, delta)

	require.Contains(t, current, "g1")
	names := make([]string, 0, 2)
	for _, c := range current["g1"].Categories {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Rent", "Electricity"}, names)
}

func TestMergeCategoryGroupsCategoryTombstone(t *testing.T) {
	current := map[string]models.CategoryGroup{
		"g1": group("g1", "Bills",
			category("c1", "g1", "Rent"),
			category("c2", "g1", "Power")),
	}

	delta := []models.CategoryGroup{
		group("g1", "Bills", models.Category{ID: "c1", CategoryGroupID: "g1", Deleted: true}),
	}
	MergeCategoryGroups(current, delta)

	require.Len(t, current["g1"].Categories, 1)
	assert.Equal(t, "Power", current["g1"].Categories[0].Name)
}

func TestGroupTombstoneCascadesToNestedCategories(t *testing.T) {
	current := map[string]models.CategoryGroup{
		"g1": group("g1", "Bills",
			category("c1", "g1", "Rent"),
			category("c2", "g1", "Power")),
		"g2": group("g2", "Fun", category("c3", "g2", "Games")),
	}

	// The group tombstone names none of its categories; they go with it.
	delta := []models.CategoryGroup{
		{ID: "g1", Deleted: true},
	}
	MergeCategoryGroups(current, delta)

	assert.NotContains(t, current, "g1")
	require.Contains(t, current, "g2")
	assert.Len(t, current["g2"].Categories, 1)
}

func TestMergeCategoryGroupsNewGroup(t *testing.T) {
	current := map[string]models.CategoryGroup{}
	delta := []models.CategoryGroup{
		group("g1", "Bills",
			category("c1", "g1", "Rent"),
			models.Category{ID: "c9", CategoryGroupID: "g1", Deleted: true}),
	}
	MergeCategoryGroups(current, delta)

	require.Contains(t, current, "g1")
	require.Len(t, current["g1"].Categories, 1)
	assert.Equal(t, "Rent", current["g1"].Categories[0].Name)
}

func TestMergeCategoryGroupsIdempotent(t *testing.T) {
	current := map[string]models.CategoryGroup{
		"g1": group("g1", "Bills", category("c1", "g1", "Rent")),
	}
	delta := []models.CategoryGroup{
		group("g1", "Bills", category("c2", "g1", "Power")),
		{ID: "g2", Deleted: true},
	}

	MergeCategoryGroups(current, delta)
	once := make(map[string]models.CategoryGroup, len(current))
	for k, v := range current {
		once[k] = v
	}

	MergeCategoryGroups(current, delta)
	assert.Equal(t, once, current)
}
