package service

import (
	"context"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/internal/util"
)

// CommentService wraps the comment store with ownership checks.
type CommentService struct {
	CommentRepo    *repository.CommentRepository
	SuggestionRepo *repository.SuggestionRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, suggestionRepo *repository.SuggestionRepository) *CommentService {
	return &CommentService{
		CommentRepo:    commentRepo,
		SuggestionRepo: suggestionRepo,
	}
}

func (s *CommentService) ListComments(ctx context.Context, suggestionID int64) ([]model.Comment, error) {
	return s.CommentRepo.ListComments(ctx, []int64{suggestionID})
}

// AddComment verifies the suggestion exists before attaching a comment,
// so a dangling comment never enters the list.
func (s *CommentService) AddComment(ctx context.Context, user model.User, suggestionID int64, text string) (*model.Comment, error) {
	if _, err := s.SuggestionRepo.Get(ctx, suggestionID); err != nil {
		return nil, err
	}
	return s.CommentRepo.AddComment(ctx, suggestionID, text)
}

// DeleteComment removes a comment; only its author or an administrator
// may do so.
func (s *CommentService) DeleteComment(ctx context.Context, user model.User, commentID, suggestionID int64) error {
	if user.Role != model.RoleAdmin {
		comments, err := s.CommentRepo.ListComments(ctx, []int64{suggestionID})
		if err != nil {
			return err
		}
		owned := false
		for _, c := range comments {
			if c.ID == commentID && model.NormalizeVoter(c.AuthorEmail) == model.NormalizeVoter(user.Login) {
				owned = true
				break
			}
		}
		if !owned {
			return util.ErrPermissionDenied
		}
	}
	return s.CommentRepo.DeleteComment(ctx, commentID)
}
