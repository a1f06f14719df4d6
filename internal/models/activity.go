package models

import (
	"strconv"
	"strings"
)

// ParseActivityIDs parses a raw list such as "[3, 7,3]" into distinct ids in
// first-seen order. Tokens that are not integers are skipped.
func ParseActivityIDs(raw string) []int {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '[' || r == ']' || r == ' ' || r == ';'
	})

	seen := make(map[int]bool, len(fields))
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// FormatActivityIDs renders ids in the raw bracketed form
func FormatActivityIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
