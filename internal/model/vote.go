package model

import (
	"strings"
	"time"

	"suggestion_board_backend/pkg/liststore"
)

// DefaultVoteWeight is used when a vote row has no usable weight.
const DefaultVoteWeight = 1

// Column names on the votes list. FieldVoteDeleted is the legacy
// withdrawn flag: older deployments retain the row and mark it instead
// of deleting it.
const (
	FieldVoteSuggestion = "Suggestion"
	FieldVoter          = "Voter"
	FieldVoteWeight     = "Votes"
	FieldVoteDeleted    = "Deleted"
)

// Vote is one ledger entry. Withdrawn rows do not count toward quota or
// display regardless of whether the deployment flags or deletes them.
type Vote struct {
	ID           int64     `json:"id"`
	SuggestionID int64     `json:"suggestionId"`
	Voter        string    `json:"voter"`
	Weight       int       `json:"weight"`
	Withdrawn    bool      `json:"withdrawn,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Active reports whether the vote still counts.
func (v Vote) Active() bool { return !v.Withdrawn }

// NormalizeVoter lowercases an identity so matching is insensitive to
// how the identity provider capitalizes logins.
func NormalizeVoter(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// VoteFromItem narrows a raw list item into a Vote.
func VoteFromItem(item *liststore.Item) Vote {
	weight := fieldInt(item.Fields, FieldVoteWeight)
	if weight < 1 {
		weight = DefaultVoteWeight
	}
	return Vote{
		ID:           ParseItemID(item.ID),
		SuggestionID: fieldInt64(item.Fields, FieldVoteSuggestion),
		Voter:        NormalizeVoter(fieldString(item.Fields, FieldVoter)),
		Weight:       weight,
		Withdrawn:    fieldBool(item.Fields, FieldVoteDeleted),
		CreatedAt:    item.CreatedDateTime,
	}
}
