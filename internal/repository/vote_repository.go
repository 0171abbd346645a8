package repository

import (
	"context"
	"strconv"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/logger"

	"go.uber.org/zap"
)

// maxServerSideIDFilter bounds how many suggestion IDs are ORed into one
// server-side filter before the read switches to a full scan.
const maxServerSideIDFilter = 15

// VoteQuery narrows a ledger read.
type VoteQuery struct {
	SuggestionIDs []int64
	Voter         string
	// IncludeWithdrawn also returns legacy flagged rows. Active counts
	// never include them.
	IncludeWithdrawn bool
}

// VoteRepository maintains the vote ledger list.
type VoteRepository struct {
	Store        *liststore.Client
	Schema       *SchemaRepository
	Spec         ListSpec
	ScanPageSize int
	Concurrency  int
}

func NewVoteRepository(store *liststore.Client, schema *SchemaRepository, cfg *config.BoardConfig) *VoteRepository {
	return &VoteRepository{
		Store:        store,
		Schema:       schema,
		Spec:         VotesSpec(cfg),
		ScanPageSize: cfg.ScanPageSize,
		Concurrency:  cfg.PurgeConcurrency,
	}
}

func (r *VoteRepository) listID(ctx context.Context) (string, error) {
	return r.Schema.ListID(ctx, r.Spec)
}

// ListVotes reads ledger entries matching the query. Rows marked with
// the legacy withdrawn flag are excluded unless asked for, whichever
// representation the deployment uses for "no longer counts". A server
// rejection of the ID filter degrades to a filterless scan.
func (r *VoteRepository) ListVotes(ctx context.Context, q VoteQuery) ([]model.Vote, error) {
	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	filter := r.serverFilter(q)
	votes := make([]model.Vote, 0)
	collect := func(item *liststore.Item) bool {
		v := model.VoteFromItem(item)
		if !q.IncludeWithdrawn && v.Withdrawn {
			return true
		}
		if q.Voter != "" && v.Voter != model.NormalizeVoter(q.Voter) {
			return true
		}
		if len(q.SuggestionIDs) > 0 && !containsID(q.SuggestionIDs, v.SuggestionID) {
			return true
		}
		votes = append(votes, v)
		return true
	}

	err = r.scan(ctx, listID, filter, collect)
	if liststore.IsUnsupportedQuery(err) {
		logger.Log.Warn("server rejected vote filter, scanning ledger", zap.Error(err))
		err = r.scan(ctx, listID, "", collect)
	}
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// CastVote records one vote. Casting twice for the same suggestion is a
// no-op returning the existing entry. The check-then-insert is not
// atomic against concurrent casts by the same user; a duplicate row is
// reconciled on the next read and never produces a negative count.
func (r *VoteRepository) CastVote(ctx context.Context, suggestionID int64, voter string, weight int) (*model.Vote, error) {
	normalized := model.NormalizeVoter(voter)
	if weight < 1 {
		weight = model.DefaultVoteWeight
	}

	existing, err := r.ListVotes(ctx, VoteQuery{
		SuggestionIDs: []int64{suggestionID},
		Voter:         normalized,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		model.FieldVoteSuggestion: suggestionID,
		model.FieldVoter:          normalized,
		model.FieldVoteWeight:     weight,
	}
	item, err := r.Store.CreateItem(ctx, listID, fields)
	if liststore.IsSchemaMismatch(err) {
		// Some list schemas store the weight column as text.
		logger.Log.Warn("vote weight rejected as number, retrying as string",
			zap.Int64("suggestion", suggestionID))
		fields[model.FieldVoteWeight] = strconv.Itoa(weight)
		item, err = r.Store.CreateItem(ctx, listID, fields)
	}
	if err != nil {
		return nil, err
	}

	vote := model.VoteFromItem(item)
	// The fields echo can lag on some deployments; trust what was written.
	vote.SuggestionID = suggestionID
	vote.Voter = normalized
	vote.Weight = weight
	return &vote, nil
}

// GetVote fetches one ledger entry by ID.
func (r *VoteRepository) GetVote(ctx context.Context, voteID int64) (*model.Vote, error) {
	listID, err := r.listID(ctx)
	if err != nil {
		return nil, err
	}

	item, err := r.Store.Item(ctx, listID, strconv.FormatInt(voteID, 10))
	if liststore.IsNotFound(err) {
		return nil, util.ErrVoteNotFound
	}
	if err != nil {
		return nil, err
	}
	vote := model.VoteFromItem(item)
	return &vote, nil
}

// WithdrawVote deletes a ledger entry by ID.
func (r *VoteRepository) WithdrawVote(ctx context.Context, voteID int64) error {
	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	err = r.Store.DeleteItem(ctx, listID, strconv.FormatInt(voteID, 10))
	if liststore.IsNotFound(err) {
		return util.ErrVoteNotFound
	}
	return err
}

// PurgeVotesForSuggestion removes every active vote for a suggestion,
// fanning out independent per-row deletes. Zero matches is fine. Partial
// failures are reported after every row has been attempted.
func (r *VoteRepository) PurgeVotesForSuggestion(ctx context.Context, suggestionID int64) error {
	votes, err := r.ListVotes(ctx, VoteQuery{SuggestionIDs: []int64{suggestionID}})
	if err != nil {
		return err
	}
	if len(votes) == 0 {
		return nil
	}

	listID, err := r.listID(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, strconv.FormatInt(v.ID, 10))
	}
	return deleteEach(ctx, r.Store, listID, ids, r.Concurrency)
}

func (r *VoteRepository) serverFilter(q VoteQuery) string {
	var clauses []string
	if q.Voter != "" {
		clauses = append(clauses, liststore.FieldEq(model.FieldVoter, model.NormalizeVoter(q.Voter)))
	}
	if n := len(q.SuggestionIDs); n > 0 && n <= maxServerSideIDFilter {
		idClauses := make([]string, 0, n)
		for _, id := range q.SuggestionIDs {
			idClauses = append(idClauses, liststore.FieldEq(model.FieldVoteSuggestion, id))
		}
		clauses = append(clauses, liststore.Or(idClauses...))
	}
	return liststore.And(clauses...)
}

func (r *VoteRepository) scan(ctx context.Context, listID, filter string, visit func(*liststore.Item) bool) error {
	token := ""
	for {
		q := liststore.Query{
			Filter:    filter,
			Expand:    []string{"fields"},
			Top:       r.ScanPageSize,
			SkipToken: token,
			// The voter column may predate its index on older lists.
			AllowUnindexed: filter != "",
		}
		page, err := r.Store.Items(ctx, listID, q)
		if liststore.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		for i := range page.Items {
			if !visit(&page.Items[i]) {
				return nil
			}
		}
		if page.NextToken == "" {
			return nil
		}
		token = page.NextToken
	}
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
