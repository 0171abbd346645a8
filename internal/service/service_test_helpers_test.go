package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/pkg/liststore"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL = "https://lists.example.test/v1.0"
	testSiteID  = "board"
	testSite    = testBaseURL + "/sites/site-1"

	suggestionsListID = "list-sugg"
	votesListID       = "list-votes"
	commentsListID    = "list-comments"
	statusesListID    = "list-status"
	categoriesListID  = "list-cat"
)

var (
	testUser  = model.User{ID: "u1", DisplayName: "Alice", Login: "Alice@Example.com", Role: model.RoleUser}
	otherUser = model.User{ID: "u2", DisplayName: "Bob", Login: "bob@example.com", Role: model.RoleUser}
	adminUser = model.User{ID: "u3", DisplayName: "Root", Login: "root@example.com", Role: model.RoleAdmin}
)

type testEnv struct {
	Suggestions *SuggestionService
	Votes       *VoteService
	Comments    *CommentService
	Taxonomy    *TaxonomyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/sites/"+testSiteID,
		httpmock.NewStringResponder(http.StatusOK, `{"id":"site-1"}`))

	cfg := &config.BoardConfig{
		VoteQuota:         5,
		PageSize:          20,
		ScanPageSize:      200,
		PurgeConcurrency:  2,
		SuggestionsList:   "Suggestions",
		VotesList:         "SuggestionVotes",
		CommentsList:      "SuggestionComments",
		CategoriesList:    "SuggestionCategories",
		SubcategoriesList: "SuggestionSubcategories",
		StatusesList:      "SuggestionStatuses",
	}
	for name, id := range map[string]string{
		cfg.SuggestionsList:   suggestionsListID,
		cfg.VotesList:         votesListID,
		cfg.CommentsList:      commentsListID,
		cfg.StatusesList:      statusesListID,
		cfg.CategoriesList:    categoriesListID,
		cfg.SubcategoriesList: "list-subcat",
	} {
		httpmock.RegisterResponderWithQuery(http.MethodGet, testSite+"/lists",
			url.Values{"$filter": []string{liststore.DisplayNameEq(name)}},
			httpmock.NewStringResponder(http.StatusOK,
				fmt.Sprintf(`{"value":[{"id":%q,"displayName":%q}]}`, id, name)))
	}

	store := liststore.New(&liststore.Config{
		BaseURL: testBaseURL,
		SiteID:  testSiteID,
		Token:   "test-token",
	}, zap.NewNop())
	schema := repository.NewSchemaRepository(store)

	suggestionRepo := repository.NewSuggestionRepository(store, schema, cfg)
	voteRepo := repository.NewVoteRepository(store, schema, cfg)
	commentRepo := repository.NewCommentRepository(store, schema, cfg)
	taxonomyRepo := repository.NewTaxonomyRepository(store, schema, cfg)

	taxonomy := NewTaxonomyService(taxonomyRepo)
	env := &testEnv{
		Taxonomy: taxonomy,
		Votes:    NewVoteService(voteRepo, suggestionRepo, taxonomy, cfg.VoteQuota, cfg.QuotaPerCategory),
		Comments: NewCommentService(commentRepo, suggestionRepo),
	}
	env.Suggestions = NewSuggestionService(suggestionRepo, voteRepo, commentRepo, taxonomy)
	return env
}

func itemsURL(listID string) string {
	return testSite + "/lists/" + listID + "/items"
}

func rawItem(id int64, fields map[string]any, createdAt time.Time, email, displayName string) map[string]any {
	return map[string]any{
		"id":              strconv.FormatInt(id, 10),
		"fields":          fields,
		"createdDateTime": createdAt.UTC().Format(time.RFC3339),
		"createdBy": map[string]any{
			"user": map[string]any{"email": email, "displayName": displayName},
		},
	}
}

func suggestionRaw(id int64, title, status, category, owner string) map[string]any {
	return rawItem(id, map[string]any{
		model.FieldTitle:    title,
		model.FieldStatus:   status,
		model.FieldCategory: category,
	}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(id)*time.Minute), owner, owner)
}

func voteRaw(id, suggestionID int64, voter string, weight int) map[string]any {
	return rawItem(id, map[string]any{
		model.FieldVoteSuggestion: suggestionID,
		model.FieldVoter:          voter,
		model.FieldVoteWeight:     weight,
	}, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), voter, voter)
}

func commentRaw(id, suggestionID int64, text, author string) map[string]any {
	return rawItem(id, map[string]any{
		model.FieldCommentSuggestion: suggestionID,
		model.FieldCommentText:       text,
	}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), author, author)
}

func collection(t *testing.T, items ...map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"value": items})
	require.NoError(t, err)
	return string(raw)
}

// registerListItems serves a fixed row set for every read of one list.
func registerListItems(t *testing.T, listID string, items ...map[string]any) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodGet, itemsURL(listID),
		httpmock.NewStringResponder(http.StatusOK, collection(t, items...)))
}

// registerItem serves one row for direct fetches by ID.
func registerItem(t *testing.T, listID string, item map[string]any) {
	t.Helper()
	id, _ := item["id"].(string)
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	httpmock.RegisterResponder(http.MethodGet, itemsURL(listID)+"/"+id,
		httpmock.NewStringResponder(http.StatusOK, string(raw)))
}

func registerDelete(t *testing.T, listID string, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		httpmock.RegisterResponder(http.MethodDelete,
			itemsURL(listID)+"/"+strconv.FormatInt(id, 10),
			httpmock.NewStringResponder(http.StatusNoContent, ""))
	}
}

func registerFieldPatch(t *testing.T, listID string, id int64, captured *map[string]any) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPatch,
		itemsURL(listID)+"/"+strconv.FormatInt(id, 10)+"/fields",
		func(req *http.Request) (*http.Response, error) {
			defer req.Body.Close()
			var body map[string]any
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			if captured != nil {
				*captured = body
			}
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})
}
