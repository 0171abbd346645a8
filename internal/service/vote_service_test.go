package service

import (
	"context"
	"net/http"
	"testing"

	"suggestion_board_backend/internal/util"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote_QuotaExhausted(t *testing.T) {
	env := newTestEnv(t)

	// Built-in Active/Done vocabulary.
	registerListItems(t, statusesListID)

	target := suggestionRaw(6, "One more idea", "Active", "", "someone@example.com")
	registerItem(t, suggestionsListID, target)
	registerListItems(t, suggestionsListID,
		suggestionRaw(1, "A", "Active", "", "x@example.com"),
		suggestionRaw(2, "B", "Active", "", "x@example.com"),
		suggestionRaw(3, "C", "Active", "", "x@example.com"),
		suggestionRaw(4, "D", "Active", "", "x@example.com"),
		suggestionRaw(5, "E", "Active", "", "x@example.com"),
		target,
	)
	registerListItems(t, votesListID,
		voteRaw(11, 1, "alice@example.com", 1),
		voteRaw(12, 2, "alice@example.com", 1),
		voteRaw(13, 3, "alice@example.com", 1),
		voteRaw(14, 4, "alice@example.com", 1),
		voteRaw(15, 5, "alice@example.com", 1),
	)

	_, err := env.Votes.CastVote(context.Background(), testUser, 6, 1)
	assert.ErrorIs(t, err, util.ErrQuotaExhausted)

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["POST "+itemsURL(votesListID)], "an exhausted quota must block the insert")
}

func TestCastVote_VotesOnTerminalSuggestionsDoNotCount(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)

	target := suggestionRaw(6, "One more idea", "Active", "", "someone@example.com")
	registerItem(t, suggestionsListID, target)
	// Suggestions 4 and 5 are already Done, so the status filter keeps
	// them out of the result; the votes on them are stranded and free up
	// budget.
	registerListItems(t, suggestionsListID,
		suggestionRaw(1, "A", "Active", "", "x@example.com"),
		suggestionRaw(2, "B", "Active", "", "x@example.com"),
		suggestionRaw(3, "C", "Active", "", "x@example.com"),
		target,
	)
	registerListItems(t, votesListID,
		voteRaw(11, 1, "alice@example.com", 1),
		voteRaw(12, 2, "alice@example.com", 1),
		voteRaw(13, 3, "alice@example.com", 1),
		voteRaw(14, 4, "alice@example.com", 1),
		voteRaw(15, 5, "alice@example.com", 1),
	)

	httpmock.RegisterResponder(http.MethodPost, itemsURL(votesListID),
		httpmock.NewStringResponder(http.StatusCreated,
			`{"id":"16","fields":{"Suggestion":6,"Voter":"alice@example.com","Votes":1}}`))
	registerFieldPatch(t, suggestionsListID, 6, nil)

	vote, err := env.Votes.CastVote(context.Background(), testUser, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), vote.SuggestionID)
	assert.Equal(t, "alice@example.com", vote.Voter)
}

func TestCastVote_ExistingVoteBypassesQuota(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)

	target := suggestionRaw(5, "E", "Active", "", "x@example.com")
	registerItem(t, suggestionsListID, target)
	registerListItems(t, suggestionsListID,
		suggestionRaw(1, "A", "Active", "", "x@example.com"),
		suggestionRaw(2, "B", "Active", "", "x@example.com"),
		suggestionRaw(3, "C", "Active", "", "x@example.com"),
		suggestionRaw(4, "D", "Active", "", "x@example.com"),
		target,
	)
	registerListItems(t, votesListID,
		voteRaw(11, 1, "alice@example.com", 1),
		voteRaw(12, 2, "alice@example.com", 1),
		voteRaw(13, 3, "alice@example.com", 1),
		voteRaw(14, 4, "alice@example.com", 1),
		voteRaw(15, 5, "alice@example.com", 1),
	)
	registerFieldPatch(t, suggestionsListID, 5, nil)

	vote, err := env.Votes.CastVote(context.Background(), testUser, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), vote.ID, "re-casting must return the existing entry")

	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["POST "+itemsURL(votesListID)])
}

func TestCastVote_TerminalSuggestionReadsAsMissing(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	registerItem(t, suggestionsListID, suggestionRaw(7, "Old idea", "Done", "", "x@example.com"))

	_, err := env.Votes.CastVote(context.Background(), testUser, 7, 1)
	assert.ErrorIs(t, err, util.ErrSuggestionNotFound)
}

func TestCastVote_RefreshesDenormalizedCount(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	target := suggestionRaw(9, "Idea", "Active", "", "x@example.com")
	registerItem(t, suggestionsListID, target)
	registerListItems(t, suggestionsListID, target)

	votesServed := 0
	httpmock.RegisterResponder(http.MethodGet, itemsURL(votesListID),
		func(req *http.Request) (*http.Response, error) {
			votesServed++
			// The ledger is empty until the insert lands, then holds the
			// new row plus an older one by someone else.
			if votesServed <= 3 {
				return httpmock.NewStringResponse(http.StatusOK, `{"value":[]}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, collection(t,
				voteRaw(21, 9, "alice@example.com", 1),
				voteRaw(20, 9, "bob@example.com", 2),
			)), nil
		})
	httpmock.RegisterResponder(http.MethodPost, itemsURL(votesListID),
		httpmock.NewStringResponder(http.StatusCreated,
			`{"id":"21","fields":{"Suggestion":9,"Voter":"alice@example.com","Votes":1}}`))

	var patched map[string]any
	registerFieldPatch(t, suggestionsListID, 9, &patched)

	_, err := env.Votes.CastVote(context.Background(), testUser, 9, 1)
	require.NoError(t, err)
	require.NotNil(t, patched)
	assert.Equal(t, float64(3), patched["VoteCount"], "the denormalized total sums ledger weights")
}

func TestQuotaFor(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	// Suggestion 2 is Done; the non-terminal status filter excludes it, so
	// the vote on it is stranded and does not consume budget.
	registerListItems(t, suggestionsListID,
		suggestionRaw(1, "A", "Active", "", "x@example.com"),
	)
	registerListItems(t, votesListID,
		voteRaw(11, 1, "alice@example.com", 1),
		voteRaw(12, 2, "alice@example.com", 1),
	)

	status, err := env.Votes.QuotaFor(context.Background(), testUser, "")
	require.NoError(t, err)
	assert.Equal(t, 5, status.Quota)
	assert.Equal(t, 1, status.Used, "only the vote on the active suggestion counts")
	assert.Equal(t, 4, status.Available)
}

func TestWithdrawVote_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	registerItem(t, votesListID, voteRaw(30, 4, "alice@example.com", 1))

	err := env.Votes.WithdrawVote(context.Background(), otherUser, 30)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestWithdrawVote_ByOwner(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	registerItem(t, votesListID, voteRaw(30, 4, "alice@example.com", 1))
	registerDelete(t, votesListID, 30)
	registerListItems(t, votesListID)
	registerFieldPatch(t, suggestionsListID, 4, nil)

	require.NoError(t, env.Votes.WithdrawVote(context.Background(), testUser, 30))

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["DELETE "+itemsURL(votesListID)+"/30"])
}

func TestSetQuota_HotReload(t *testing.T) {
	env := newTestEnv(t)

	registerListItems(t, statusesListID)
	registerListItems(t, suggestionsListID)
	registerListItems(t, votesListID)

	env.Votes.SetQuota(2, false)

	status, err := env.Votes.QuotaFor(context.Background(), testUser, "")
	require.NoError(t, err)
	assert.Equal(t, 2, status.Quota)
	assert.Equal(t, 2, status.Available)
}
