package model

import (
	"time"

	"suggestion_board_backend/pkg/liststore"
)

// Column names on the suggestions list.
const (
	FieldTitle         = "Title"
	FieldDetails       = "Details"
	FieldStatus        = "Status"
	FieldCategory      = "Category"
	FieldSubcategory   = "Subcategory"
	FieldCompletedDate = "CompletedDate"
)

// Suggestion is one board entry.
type Suggestion struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Details        string     `json:"details"`
	Status         string     `json:"status"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedByName  string     `json:"createdByName,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastModifiedAt time.Time  `json:"lastModifiedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// SuggestionView is what the presentation layer renders: the suggestion
// enriched with vote and comment aggregates for the current user.
type SuggestionView struct {
	Suggestion
	VoteCount    int  `json:"voteCount"`
	HasVoted     bool `json:"hasVoted"`
	CommentCount int  `json:"commentCount"`
}

// SuggestionFromItem narrows a raw list item into a Suggestion.
func SuggestionFromItem(item *liststore.Item) Suggestion {
	s := Suggestion{
		ID:             ParseItemID(item.ID),
		Title:          fieldString(item.Fields, FieldTitle),
		Details:        fieldString(item.Fields, FieldDetails),
		Status:         fieldString(item.Fields, FieldStatus),
		Category:       fieldString(item.Fields, FieldCategory),
		Subcategory:    fieldString(item.Fields, FieldSubcategory),
		CreatedBy:      item.CreatedBy.User.Email,
		CreatedByName:  item.CreatedBy.User.DisplayName,
		CreatedAt:      item.CreatedDateTime,
		LastModifiedAt: item.LastModifiedDateTime,
	}
	if t := fieldTime(item.Fields, FieldCompletedDate); !t.IsZero() {
		s.CompletedAt = &t
	}
	return s
}
