package model

import (
	"sort"

	"suggestion_board_backend/pkg/liststore"
)

// Column names on the taxonomy lists.
const (
	FieldParentCategory  = "Category"
	FieldStatusSortOrder = "SortOrder"
	FieldStatusCompleted = "Completed"
	FieldStatusDenied    = "Denied"
)

// CategoryDefinition is one row of the category dropdown.
type CategoryDefinition struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SubcategoryDefinition is one row of the subcategory dropdown, scoped
// to a parent category by value.
type SubcategoryDefinition struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// StatusDefinition is one row of the ordered status vocabulary.
// IsCompleted marks a terminal status whose transition cancels votes;
// IsDenied marks the optional distinct rejection terminal.
type StatusDefinition struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	SortOrder   int    `json:"sortOrder"`
	IsCompleted bool   `json:"isCompleted"`
	IsDenied    bool   `json:"isDenied,omitempty"`
}

// Terminal reports whether reaching this status cancels active votes.
func (s StatusDefinition) Terminal() bool { return s.IsCompleted || s.IsDenied }

func CategoryFromItem(item *liststore.Item) CategoryDefinition {
	return CategoryDefinition{
		ID:    ParseItemID(item.ID),
		Title: fieldString(item.Fields, FieldTitle),
	}
}

func SubcategoryFromItem(item *liststore.Item) SubcategoryDefinition {
	return SubcategoryDefinition{
		ID:       ParseItemID(item.ID),
		Title:    fieldString(item.Fields, FieldTitle),
		Category: fieldString(item.Fields, FieldParentCategory),
	}
}

func StatusFromItem(item *liststore.Item) StatusDefinition {
	return StatusDefinition{
		ID:          ParseItemID(item.ID),
		Title:       fieldString(item.Fields, FieldTitle),
		SortOrder:   fieldInt(item.Fields, FieldStatusSortOrder),
		IsCompleted: fieldBool(item.Fields, FieldStatusCompleted),
		IsDenied:    fieldBool(item.Fields, FieldStatusDenied),
	}
}

// DefaultStatuses is the built-in two-value status set used when the
// statuses list is empty, so the board stays usable before any taxonomy
// rows are provisioned.
func DefaultStatuses() []StatusDefinition {
	return []StatusDefinition{
		{Title: "Active", SortOrder: 1},
		{Title: "Done", SortOrder: 2, IsCompleted: true},
	}
}

// SortStatuses orders a status set by sort order, then title for equal
// keys. When no row carries an explicit terminal flag, the last status
// in sort order is treated as terminal.
func SortStatuses(statuses []StatusDefinition) []StatusDefinition {
	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].SortOrder != statuses[j].SortOrder {
			return statuses[i].SortOrder < statuses[j].SortOrder
		}
		return statuses[i].Title < statuses[j].Title
	})

	anyTerminal := false
	for _, s := range statuses {
		if s.Terminal() {
			anyTerminal = true
			break
		}
	}
	if !anyTerminal && len(statuses) > 0 {
		statuses[len(statuses)-1].IsCompleted = true
	}
	return statuses
}
