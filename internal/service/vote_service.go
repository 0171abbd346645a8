package service

import (
	"context"
	"strings"
	"sync"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/logger"

	"go.uber.org/zap"
)

// VoteService enforces the per-user quota on top of the ledger. The
// ledger itself only exposes counts; how quota partitions (globally or
// per category) is decided here from configuration.
type VoteService struct {
	VoteRepo       *repository.VoteRepository
	SuggestionRepo *repository.SuggestionRepository
	Taxonomy       *TaxonomyService

	mu               sync.RWMutex
	quota            int
	quotaPerCategory bool
}

func NewVoteService(
	voteRepo *repository.VoteRepository,
	suggestionRepo *repository.SuggestionRepository,
	taxonomy *TaxonomyService,
	quota int,
	quotaPerCategory bool,
) *VoteService {
	return &VoteService{
		VoteRepo:         voteRepo,
		SuggestionRepo:   suggestionRepo,
		Taxonomy:         taxonomy,
		quota:            quota,
		quotaPerCategory: quotaPerCategory,
	}
}

// SetQuota swaps the quota knobs at runtime, used by config hot reload.
func (s *VoteService) SetQuota(quota int, perCategory bool) {
	s.mu.Lock()
	s.quota = quota
	s.quotaPerCategory = perCategory
	s.mu.Unlock()
}

func (s *VoteService) quotaSettings() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota, s.quotaPerCategory
}

// QuotaStatus reports a user's vote budget. Only votes on suggestions in
// a non-terminal status count as used; votes stranded on completed
// suggestions never block new ones.
type QuotaStatus struct {
	Quota     int `json:"quota"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// ListVotes returns the active votes for the given suggestions, or for a
// voter when suggestionIDs is empty.
func (s *VoteService) ListVotes(ctx context.Context, suggestionIDs []int64, voter string) ([]model.Vote, error) {
	return s.VoteRepo.ListVotes(ctx, repository.VoteQuery{
		SuggestionIDs: suggestionIDs,
		Voter:         voter,
	})
}

// Quota computes the user's remaining budget, scoped to the category
// when quota partitions per category.
func (s *VoteService) QuotaFor(ctx context.Context, user model.User, category string) (*QuotaStatus, error) {
	used, err := s.activeVoteCount(ctx, user, category)
	if err != nil {
		return nil, err
	}

	quota, _ := s.quotaSettings()
	status := &QuotaStatus{Quota: quota, Used: used, Available: quota - used}
	if status.Available < 0 {
		status.Available = 0
	}
	return status, nil
}

// CastVote checks quota, records the vote idempotently and refreshes the
// suggestion's denormalized vote total.
func (s *VoteService) CastVote(ctx context.Context, user model.User, suggestionID int64, weight int) (*model.Vote, error) {
	suggestion, err := s.SuggestionRepo.Get(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if terminal, err := s.isTerminal(ctx, suggestion.Status); err != nil {
		return nil, err
	} else if terminal {
		return nil, util.ErrSuggestionNotFound
	}

	scope := ""
	if _, perCategory := s.quotaSettings(); perCategory {
		scope = suggestion.Category
	}
	quota, err := s.QuotaFor(ctx, user, scope)
	if err != nil {
		return nil, err
	}

	// An existing vote on this suggestion is a no-op regardless of quota.
	existing, err := s.VoteRepo.ListVotes(ctx, repository.VoteQuery{
		SuggestionIDs: []int64{suggestionID},
		Voter:         user.Login,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 && quota.Available <= 0 {
		return nil, util.ErrQuotaExhausted
	}

	vote, err := s.VoteRepo.CastVote(ctx, suggestionID, user.Login, weight)
	if err != nil {
		return nil, err
	}

	s.refreshVoteCount(ctx, suggestionID)
	return vote, nil
}

// WithdrawVote removes one of the caller's votes. Administrators may
// withdraw any vote.
func (s *VoteService) WithdrawVote(ctx context.Context, user model.User, voteID int64) error {
	target, err := s.VoteRepo.GetVote(ctx, voteID)
	if err != nil {
		return err
	}
	if user.Role != model.RoleAdmin && target.Voter != model.NormalizeVoter(user.Login) {
		return util.ErrPermissionDenied
	}

	if err := s.VoteRepo.WithdrawVote(ctx, voteID); err != nil {
		return err
	}
	s.refreshVoteCount(ctx, target.SuggestionID)
	return nil
}

// activeVoteCount counts the user's votes on non-terminal suggestions,
// optionally narrowed to one category.
func (s *VoteService) activeVoteCount(ctx context.Context, user model.User, category string) (int, error) {
	votes, err := s.VoteRepo.ListVotes(ctx, repository.VoteQuery{Voter: user.Login})
	if err != nil {
		return 0, err
	}
	if len(votes) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.SuggestionID)
	}

	nonTerminal, err := s.Taxonomy.NonTerminalStatuses(ctx)
	if err != nil {
		return 0, err
	}
	page, err := s.SuggestionRepo.GetSuggestions(ctx, repository.SuggestionFilter{
		IDs:      ids,
		Statuses: nonTerminal,
	}, repository.Page{})
	if err != nil {
		return 0, err
	}

	counted := make(map[int64]bool, len(page.Items))
	for _, item := range page.Items {
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		counted[item.ID] = true
	}

	used := 0
	for _, v := range votes {
		if counted[v.SuggestionID] {
			used++
		}
	}
	return used, nil
}

func (s *VoteService) isTerminal(ctx context.Context, statusTitle string) (bool, error) {
	def, err := s.Taxonomy.StatusByTitle(ctx, statusTitle)
	if err != nil {
		return false, err
	}
	if def == nil {
		return false, nil
	}
	return def.Terminal(), nil
}

// refreshVoteCount re-derives the denormalized total from the ledger.
// Best-effort: the ledger stays authoritative.
func (s *VoteService) refreshVoteCount(ctx context.Context, suggestionID int64) {
	votes, err := s.VoteRepo.ListVotes(ctx, repository.VoteQuery{SuggestionIDs: []int64{suggestionID}})
	if err != nil {
		logger.Log.Warn("could not re-read ledger for vote count",
			zap.Int64("suggestion", suggestionID), zap.Error(err))
		return
	}
	total := 0
	for _, v := range votes {
		total += v.Weight
	}
	if err := s.SuggestionRepo.SetVoteCount(ctx, suggestionID, total); err != nil {
		logger.Log.Warn("could not update denormalized vote count",
			zap.Int64("suggestion", suggestionID), zap.Error(err))
	}
}
