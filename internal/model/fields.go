package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The remote store is schema-on-write: the same logical column can come
// back as a string, a float64 or a json.Number depending on how the row
// was written. These helpers narrow raw field values into the entity
// types, treating unconvertible values as absent.

func fieldString(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func fieldInt64(fields map[string]any, name string) int64 {
	switch v := fields[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	default:
		return 0
	}
}

func fieldInt(fields map[string]any, name string) int {
	return int(fieldInt64(fields, name))
}

func fieldBool(fields map[string]any, name string) bool {
	switch v := fields[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	default:
		return false
	}
}

func fieldTime(fields map[string]any, name string) time.Time {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseItemID converts a remote item ID (always transported as a string)
// into the numeric IDs the entities use. Returns 0 for unparseable IDs.
func ParseItemID(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}
