package util

import (
	"strconv"
)

// ParseID converts a path or query parameter into a positive item ID.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
