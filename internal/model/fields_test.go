package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldString(t *testing.T) {
	fields := map[string]any{
		"s": "plain",
		"f": float64(7),
		"n": json.Number("42"),
		"b": true,
		"x": struct{}{},
	}
	assert.Equal(t, "plain", fieldString(fields, "s"))
	assert.Equal(t, "7", fieldString(fields, "f"))
	assert.Equal(t, "42", fieldString(fields, "n"))
	assert.Equal(t, "true", fieldString(fields, "b"))
	assert.Empty(t, fieldString(fields, "x"))
	assert.Empty(t, fieldString(fields, "missing"))
}

func TestFieldInt64(t *testing.T) {
	fields := map[string]any{
		"f": float64(10),
		"s": " 11 ",
		"n": json.Number("12"),
		"bad": "not a number",
	}
	assert.Equal(t, int64(10), fieldInt64(fields, "f"))
	assert.Equal(t, int64(11), fieldInt64(fields, "s"))
	assert.Equal(t, int64(12), fieldInt64(fields, "n"))
	assert.Zero(t, fieldInt64(fields, "bad"))
	assert.Zero(t, fieldInt64(fields, "missing"))
}

func TestFieldBool(t *testing.T) {
	fields := map[string]any{
		"b":   true,
		"s":   "true",
		"s2":  " false ",
		"f":   float64(1),
		"f0":  float64(0),
		"bad": "maybe",
	}
	assert.True(t, fieldBool(fields, "b"))
	assert.True(t, fieldBool(fields, "s"))
	assert.False(t, fieldBool(fields, "s2"))
	assert.True(t, fieldBool(fields, "f"))
	assert.False(t, fieldBool(fields, "f0"))
	assert.False(t, fieldBool(fields, "bad"))
}

func TestFieldTime(t *testing.T) {
	fields := map[string]any{
		"rfc":  "2026-03-01T10:30:00Z",
		"bare": "2026-03-01T10:30:00",
		"date": "2026-03-01",
		"bad":  "yesterday",
	}
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), fieldTime(fields, "rfc"))
	assert.False(t, fieldTime(fields, "bare").IsZero())
	assert.False(t, fieldTime(fields, "date").IsZero())
	assert.True(t, fieldTime(fields, "bad").IsZero())
	assert.True(t, fieldTime(fields, "missing").IsZero())
}

func TestParseItemID(t *testing.T) {
	assert.Equal(t, int64(17), ParseItemID("17"))
	assert.Zero(t, ParseItemID("abc"))
	assert.Zero(t, ParseItemID(""))
}
