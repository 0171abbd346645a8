package repository

import (
	"context"
	"strconv"
	"strings"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/logger"

	"go.uber.org/zap"
)

// CommentRepository maintains the comments list.
type CommentRepository struct {
	Store        *liststore.Client
	Schema       *SchemaRepository
	Spec         ListSpec
	ScanPageSize int
	Concurrency  int
}

func NewCommentRepository(store *liststore.Client, schema *SchemaRepository, cfg *config.BoardConfig) *CommentRepository {
	return &CommentRepository{
		Store:        store,
		Schema:       schema,
		Spec:         CommentsSpec(cfg),
		ScanPageSize: cfg.ScanPageSize,
		Concurrency:  cfg.PurgeConcurrency,
	}
}

func (r *CommentRepository) listID(ctx context.Context) (string, error) {
	return r.Schema.ListID(ctx, r.Spec)
}

// ListComments reads the comments of the given suggestions, author
// projection expanded, following continuation tokens until the thread
// is complete. Some deployments silently drop rows when the
// select/expand combination confuses them; an empty result for a
// non-empty ID filter triggers one broader unfiltered scan, filtered
// client-side, before an empty answer is accepted.
func (r *CommentRepository) ListComments(ctx context.Context, suggestionIDs []int64) ([]model.Comment, error) {
	if len(suggestionIDs) == 0 {
		return []model.Comment{}, nil
	}

	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	idClauses := make([]string, 0, len(suggestionIDs))
	for _, id := range suggestionIDs {
		idClauses = append(idClauses, liststore.FieldEq(model.FieldCommentSuggestion, id))
	}

	items, err := r.scan(ctx, listID, liststore.Or(idClauses...))
	if err != nil {
		return nil, err
	}

	comments := commentsFromItems(items, suggestionIDs)
	if len(comments) > 0 || len(items) > 0 {
		return comments, nil
	}

	// Filtered read came back empty; re-check with a broad scan before
	// concluding there are no comments.
	logger.Log.Debug("filtered comment read was empty, retrying unfiltered",
		zap.Int64s("suggestions", suggestionIDs))
	broad, err := r.scan(ctx, listID, "")
	if err != nil {
		return nil, err
	}
	return commentsFromItems(broad, suggestionIDs), nil
}

// scan reads matching rows page by page, following continuation tokens
// until the store runs out, so long threads are never truncated.
func (r *CommentRepository) scan(ctx context.Context, listID, filter string) ([]liststore.Item, error) {
	var items []liststore.Item
	token := ""
	for {
		page, err := r.Store.Items(ctx, listID, liststore.Query{
			Filter:    filter,
			OrderBy:   "createdDateTime asc",
			Expand:    []string{"fields"},
			Top:       r.ScanPageSize,
			SkipToken: token,
		})
		if liststore.IsNotFound(err) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.NextToken == "" {
			return items, nil
		}
		token = page.NextToken
	}
}

// CountComments aggregates comment counts per suggestion.
func (r *CommentRepository) CountComments(ctx context.Context, suggestionIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(suggestionIDs))
	if len(suggestionIDs) == 0 {
		return counts, nil
	}

	comments, err := r.ListComments(ctx, suggestionIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		counts[c.SuggestionID]++
	}
	return counts, nil
}

// AddComment appends a comment to a suggestion. The suggestion ID must
// be a positive integer; the association is never silently dropped.
func (r *CommentRepository) AddComment(ctx context.Context, suggestionID int64, text string) (*model.Comment, error) {
	if suggestionID <= 0 {
		return nil, util.ErrInvalidSuggestionID
	}
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyComment
	}

	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		model.FieldCommentSuggestion: suggestionID,
		model.FieldCommentText:       text,
	}
	item, err := r.Store.CreateItem(ctx, listID, fields)
	if err != nil {
		return nil, err
	}

	comment := model.CommentFromItem(item)
	comment.SuggestionID = suggestionID
	comment.Text = text
	return &comment, nil
}

// DeleteComment removes one comment by ID.
func (r *CommentRepository) DeleteComment(ctx context.Context, commentID int64) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	err = r.Store.DeleteItem(ctx, listID, strconv.FormatInt(commentID, 10))
	if liststore.IsNotFound(err) {
		return util.ErrCommentNotFound
	}
	return err
}

// PurgeCommentsForSuggestion removes every comment under a suggestion,
// list-then-delete-each like the vote purge.
func (r *CommentRepository) PurgeCommentsForSuggestion(ctx context.Context, suggestionID int64) error {
	comments, err := r.ListComments(ctx, []int64{suggestionID})
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}

	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, strconv.FormatInt(c.ID, 10))
	}
	return deleteEach(ctx, r.Store, listID, ids, r.Concurrency)
}

func commentsFromItems(items []liststore.Item, wanted []int64) []model.Comment {
	comments := make([]model.Comment, 0, len(items))
	for i := range items {
		c := model.CommentFromItem(&items[i])
		if containsID(wanted, c.SuggestionID) {
			comments = append(comments, c)
		}
	}
	return comments
}
