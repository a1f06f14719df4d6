package aggregator

import "strings"

// ActivityDisplay joins the names of ids, skipping ids without a name
func ActivityDisplay(ids []int, names map[int]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
