package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/logger"

	"go.uber.org/zap"
)

// SuggestionService assembles board views and applies the write rules:
// quota on casting, vote purge on terminal transitions, cascading
// cleanup on delete.
type SuggestionService struct {
	SuggestionRepo *repository.SuggestionRepository
	VoteRepo       *repository.VoteRepository
	CommentRepo    *repository.CommentRepository
	Taxonomy       *TaxonomyService
}

func NewSuggestionService(
	suggestionRepo *repository.SuggestionRepository,
	voteRepo *repository.VoteRepository,
	commentRepo *repository.CommentRepository,
	taxonomy *TaxonomyService,
) *SuggestionService {
	return &SuggestionService{
		SuggestionRepo: suggestionRepo,
		VoteRepo:       voteRepo,
		CommentRepo:    commentRepo,
		Taxonomy:       taxonomy,
	}
}

// SuggestionViewPage is one page of enriched suggestions.
type SuggestionViewPage struct {
	Items         []model.SuggestionView
	NextPageToken string
	Total         int64
}

// ListSuggestions runs the query and enriches the page with vote and
// comment aggregates, fetched concurrently and joined before returning.
func (s *SuggestionService) ListSuggestions(ctx context.Context, f repository.SuggestionFilter, page repository.Page, currentUser model.User) (*SuggestionViewPage, error) {
	result, err := s.SuggestionRepo.GetSuggestions(ctx, f, page)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}

	var (
		wg        sync.WaitGroup
		votes     []model.Vote
		votesErr  error
		counts    map[int64]int
		countsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		votes, votesErr = s.VoteRepo.ListVotes(ctx, repository.VoteQuery{SuggestionIDs: ids})
	}()
	go func() {
		defer wg.Done()
		counts, countsErr = s.CommentRepo.CountComments(ctx, ids)
	}()
	wg.Wait()
	if votesErr != nil {
		return nil, votesErr
	}
	if countsErr != nil {
		return nil, countsErr
	}

	voter := model.NormalizeVoter(currentUser.Login)
	voteTotals := make(map[int64]int, len(ids))
	voted := make(map[int64]bool, len(ids))
	for _, v := range votes {
		voteTotals[v.SuggestionID] += v.Weight
		if v.Voter == voter {
			voted[v.SuggestionID] = true
		}
	}

	views := make([]model.SuggestionView, 0, len(result.Items))
	for _, item := range result.Items {
		views = append(views, model.SuggestionView{
			Suggestion:   item,
			VoteCount:    voteTotals[item.ID],
			HasVoted:     voted[item.ID],
			CommentCount: counts[item.ID],
		})
	}
	return &SuggestionViewPage{
		Items:         views,
		NextPageToken: result.NextPageToken,
		Total:         result.Total,
	}, nil
}

// GetSuggestion fetches one enriched suggestion.
func (s *SuggestionService) GetSuggestion(ctx context.Context, id int64, currentUser model.User) (*model.SuggestionView, error) {
	suggestion, err := s.SuggestionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	votes, err := s.VoteRepo.ListVotes(ctx, repository.VoteQuery{SuggestionIDs: []int64{id}})
	if err != nil {
		return nil, err
	}
	counts, err := s.CommentRepo.CountComments(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	view := model.SuggestionView{Suggestion: *suggestion, CommentCount: counts[id]}
	voter := model.NormalizeVoter(currentUser.Login)
	for _, v := range votes {
		view.VoteCount += v.Weight
		if v.Voter == voter {
			view.HasVoted = true
		}
	}
	return &view, nil
}

// CreateSuggestion validates and stores a new suggestion in the default
// (first) status.
func (s *SuggestionService) CreateSuggestion(ctx context.Context, user model.User, input *model.Suggestion) (*model.Suggestion, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.ErrEmptyTitle
	}

	status, err := s.Taxonomy.DefaultStatus(ctx)
	if err != nil {
		return nil, err
	}
	input.Status = status
	input.CreatedBy = user.Login
	input.CreatedByName = user.DisplayName
	return s.SuggestionRepo.Create(ctx, input)
}

// UpdateSuggestion lets the owner or an administrator edit the text and
// taxonomy fields. Status changes go through ChangeStatus.
func (s *SuggestionService) UpdateSuggestion(ctx context.Context, user model.User, id int64, input *model.Suggestion) error {
	existing, err := s.SuggestionRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(user, existing) {
		return util.ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return util.ErrEmptyTitle
	}
	return s.SuggestionRepo.Update(ctx, id, input)
}

// ChangeStatus moves a suggestion through the status vocabulary. A
// transition into a terminal status stamps the completion time and
// purges every active vote; moving back out clears it. The vote purge
// runs after the status write so a purge failure never leaves the
// suggestion active with cancelled votes.
func (s *SuggestionService) ChangeStatus(ctx context.Context, user model.User, id int64, statusTitle string) error {
	def, err := s.Taxonomy.StatusByTitle(ctx, statusTitle)
	if err != nil {
		return err
	}
	if def == nil {
		return util.ErrUnknownStatus
	}

	if _, err := s.SuggestionRepo.Get(ctx, id); err != nil {
		return err
	}

	var completedAt *time.Time
	if def.Terminal() {
		now := time.Now().UTC()
		completedAt = &now
	}
	if err := s.SuggestionRepo.UpdateStatus(ctx, id, def.Title, completedAt); err != nil {
		return err
	}

	if def.Terminal() {
		if err := s.VoteRepo.PurgeVotesForSuggestion(ctx, id); err != nil {
			return err
		}
		if err := s.SuggestionRepo.SetVoteCount(ctx, id, 0); err != nil {
			logger.Log.Warn("could not reset denormalized vote count",
				zap.Int64("suggestion", id), zap.Error(err))
		}
	}
	return nil
}

// DeleteSuggestion removes a suggestion and cascades to its votes and
// comments. Both purges are attempted regardless of earlier failures;
// the first failure is surfaced and the row itself is only removed when
// both cascades succeeded.
func (s *SuggestionService) DeleteSuggestion(ctx context.Context, user model.User, id int64) error {
	existing, err := s.SuggestionRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(user, existing) {
		return util.ErrPermissionDenied
	}

	voteErr := s.VoteRepo.PurgeVotesForSuggestion(ctx, id)
	commentErr := s.CommentRepo.PurgeCommentsForSuggestion(ctx, id)
	if voteErr != nil {
		return voteErr
	}
	if commentErr != nil {
		return commentErr
	}

	return s.SuggestionRepo.Delete(ctx, id)
}

func canManage(user model.User, s *model.Suggestion) bool {
	if user.Role == model.RoleAdmin {
		return true
	}
	return model.NormalizeVoter(user.Login) == model.NormalizeVoter(s.CreatedBy)
}
