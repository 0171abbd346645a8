package repository

import (
	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"

	"suggestion_board_backend/pkg/liststore"
)

// FieldVoteCount is the denormalized per-suggestion vote total kept on
// the suggestions list so "most voted" views can ask the server to sort.
// It is maintained best-effort after each ledger write; the ledger
// remains the source of truth.
const FieldVoteCount = "VoteCount"

// ListSpec is the fixed specification of one logical list: its display
// name and the columns it must carry.
type ListSpec struct {
	Name        string
	Description string
	Columns     []liststore.Column
}

// BoardSpecs returns the specifications for the six logical lists, with
// display names taken from config so a deployment can point at
// pre-existing lists.
func BoardSpecs(cfg *config.BoardConfig) []ListSpec {
	return []ListSpec{
		SuggestionsSpec(cfg),
		VotesSpec(cfg),
		CommentsSpec(cfg),
		CategoriesSpec(cfg),
		SubcategoriesSpec(cfg),
		StatusesSpec(cfg),
	}
}

func SuggestionsSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.SuggestionsList,
		Description: "Improvement suggestions submitted by users",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldTitle, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldDetails, liststore.ColumnNote, false),
			liststore.NewColumn(model.FieldStatus, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldCategory, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldSubcategory, liststore.ColumnText, false),
			liststore.NewColumn(model.FieldCompletedDate, liststore.ColumnDateTime, false),
			liststore.NewColumn(FieldVoteCount, liststore.ColumnNumber, false),
		},
	}
}

func VotesSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.VotesList,
		Description: "Vote ledger for suggestions",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldVoteSuggestion, liststore.ColumnNumber, true),
			liststore.NewColumn(model.FieldVoter, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldVoteWeight, liststore.ColumnNumber, false),
			liststore.NewColumn(model.FieldVoteDeleted, liststore.ColumnBoolean, false),
		},
	}
}

func CommentsSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.CommentsList,
		Description: "Comments on suggestions",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldCommentSuggestion, liststore.ColumnNumber, true),
			liststore.NewColumn(model.FieldCommentText, liststore.ColumnNote, false),
		},
	}
}

func CategoriesSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.CategoriesList,
		Description: "Suggestion categories",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldTitle, liststore.ColumnText, true),
		},
	}
}

func SubcategoriesSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.SubcategoriesList,
		Description: "Suggestion subcategories",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldTitle, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldParentCategory, liststore.ColumnText, false),
		},
	}
}

func StatusesSpec(cfg *config.BoardConfig) ListSpec {
	return ListSpec{
		Name:        cfg.StatusesList,
		Description: "Ordered suggestion status vocabulary",
		Columns: []liststore.Column{
			liststore.NewColumn(model.FieldTitle, liststore.ColumnText, true),
			liststore.NewColumn(model.FieldStatusSortOrder, liststore.ColumnNumber, false),
			liststore.NewColumn(model.FieldStatusCompleted, liststore.ColumnBoolean, false),
			liststore.NewColumn(model.FieldStatusDenied, liststore.ColumnBoolean, false),
		},
	}
}
