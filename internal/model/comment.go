package model

import (
	"time"

	"suggestion_board_backend/pkg/liststore"
)

// Column names on the comments list.
const (
	FieldCommentSuggestion = "Suggestion"
	FieldCommentText       = "Comment"
)

// Comment is one thread entry under a suggestion. Immutable once created
// except for deletion.
type Comment struct {
	ID           int64     `json:"id"`
	SuggestionID int64     `json:"suggestionId"`
	Text         string    `json:"text"`
	AuthorName   string    `json:"authorName"`
	AuthorEmail  string    `json:"authorEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CommentFromItem narrows a raw list item into a Comment.
func CommentFromItem(item *liststore.Item) Comment {
	return Comment{
		ID:           ParseItemID(item.ID),
		SuggestionID: fieldInt64(item.Fields, FieldCommentSuggestion),
		Text:         fieldString(item.Fields, FieldCommentText),
		AuthorName:   item.CreatedBy.User.DisplayName,
		AuthorEmail:  item.CreatedBy.User.Email,
		CreatedAt:    item.CreatedDateTime,
	}
}
