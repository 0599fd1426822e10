package migration

import "sort"

// Sort returns a new slice of migrations ordered by Version, then by path.
// Unversioned files sort first.
func Sort(migrations []Migration) []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Version != sorted[j].Version {
			return sorted[i].Version < sorted[j].Version
		}

		return sorted[i].FilePath < sorted[j].FilePath
	})

	return sorted
}
